package models

import (
	"time"
)

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

// Account statuses.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusDisabled  = "disabled"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Gender       string     // "male", "female", "other"
	DOB          *time.Time // date of birth, used for age filters
	Role         string     // RoleUser, RoleAgent or RoleAdmin
	Verified     bool       // set when an identity verification is approved
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSummary is the identity attached to records that reference a user.
type UserSummary struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"userType,omitempty"`
}

// Age returns the whole years between dob and now, or -1 when dob is unknown.
func (u *User) Age(now time.Time) int {
	if u.DOB == nil {
		return -1
	}
	years := now.Year() - u.DOB.Year()
	if now.Month() < u.DOB.Month() || (now.Month() == u.DOB.Month() && now.Day() < u.DOB.Day()) {
		years--
	}
	return years
}
