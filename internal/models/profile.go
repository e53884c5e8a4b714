package models

import (
	"time"
)

// MaxAboutLen bounds Profile.About.
const MaxAboutLen = 1000

// Profile visibility levels. Private profiles are hidden from search and
// from everyone but their owner.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
	VisibilityMembers = "members"
)

// DefaultProfilePhoto is stored when the user has not uploaded a photo.
const DefaultProfilePhoto = "default-profile.jpg"

type FamilyDetails struct {
	FatherOccupation string `json:"fatherOccupation,omitempty"`
	MotherOccupation string `json:"motherOccupation,omitempty"`
	Siblings         string `json:"siblings,omitempty"`
	FamilyType       string `json:"familyType,omitempty"`   // Joint, Nuclear
	FamilyValues     string `json:"familyValues,omitempty"` // Traditional, Moderate, Liberal
}

type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type HeightRange struct {
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}

type PartnerPreferences struct {
	AgeRange      AgeRange    `json:"ageRange"`
	HeightRange   HeightRange `json:"heightRange"`
	MaritalStatus []string    `json:"maritalStatus"`
	Education     string      `json:"education,omitempty"`
	Occupation    string      `json:"occupation,omitempty"`
	Religion      string      `json:"religion,omitempty"`
	Caste         string      `json:"caste,omitempty"`
	Location      string      `json:"location,omitempty"`
}

// Profile is the matrimonial profile a user publishes.
type Profile struct {
	ID                 string             `json:"_id"`
	UserID             string             `json:"-"`
	User               *ProfileOwner      `json:"user"`
	Height             string             `json:"height"`
	MaritalStatus      string             `json:"maritalStatus"`
	Religion           string             `json:"religion"`
	Caste              string             `json:"caste,omitempty"`
	MotherTongue       string             `json:"motherTongue,omitempty"`
	Location           string             `json:"location"`
	Education          string             `json:"education"`
	Occupation         string             `json:"occupation"`
	Company            string             `json:"company,omitempty"`
	Income             string             `json:"income,omitempty"`
	About              string             `json:"about"`
	Interests          []string           `json:"interests"`
	FamilyDetails      FamilyDetails      `json:"familyDetails"`
	PartnerPreferences PartnerPreferences `json:"partnerPreferences"`
	ProfileVisibility  string             `json:"profileVisibility"`
	ProfilePhoto       string             `json:"profilePhoto"`
	Photos             []string           `json:"photos"`
	IsActive           bool               `json:"isActive"`
	IsVerified         bool               `json:"isVerified"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// ProfileOwner is the slice of the owning user shown alongside a profile.
type ProfileOwner struct {
	ID     string     `json:"_id"`
	Name   string     `json:"name"`
	Email  string     `json:"email,omitempty"`
	Gender string     `json:"gender,omitempty"`
	DOB    *time.Time `json:"dob,omitempty"`
}

// ProfileUpdate is the allow-listed set of fields a user may change on
// their own profile. Nil fields are left untouched.
type ProfileUpdate struct {
	Height             *string
	MaritalStatus      *string
	Religion           *string
	Caste              *string
	MotherTongue       *string
	Location           *string
	Education          *string
	Occupation         *string
	Company            *string
	Income             *string
	About              *string
	Interests          []string
	FamilyDetails      *FamilyDetails
	PartnerPreferences *PartnerPreferences
	ProfileVisibility  *string
	ProfilePhoto       *string
	Photos             []string
	IsActive           *bool
}

// Apply merges the set fields of u into p.
func (u *ProfileUpdate) Apply(p *Profile) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&p.Height, u.Height)
	setString(&p.MaritalStatus, u.MaritalStatus)
	setString(&p.Religion, u.Religion)
	setString(&p.Caste, u.Caste)
	setString(&p.MotherTongue, u.MotherTongue)
	setString(&p.Location, u.Location)
	setString(&p.Education, u.Education)
	setString(&p.Occupation, u.Occupation)
	setString(&p.Company, u.Company)
	setString(&p.Income, u.Income)
	setString(&p.About, u.About)
	setString(&p.ProfileVisibility, u.ProfileVisibility)
	setString(&p.ProfilePhoto, u.ProfilePhoto)

	if u.Interests != nil {
		p.Interests = u.Interests
	}
	if u.Photos != nil {
		p.Photos = u.Photos
	}
	if u.FamilyDetails != nil {
		p.FamilyDetails = *u.FamilyDetails
	}
	if u.PartnerPreferences != nil {
		p.PartnerPreferences = *u.PartnerPreferences
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
}

// ProfileSearch filters the profile directory. Zero values mean "any".
type ProfileSearch struct {
	Gender        string
	AgeMin        int
	AgeMax        int
	Religion      string
	Caste         string
	MaritalStatus string
	Location      string
	Page          int
	Limit         int
}

// Offset is the number of rows skipped for the search's page.
func (s ProfileSearch) Offset() int {
	if s.Page < 1 {
		return 0
	}
	return (s.Page - 1) * s.Limit
}
