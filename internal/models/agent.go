package models

import (
	"time"
)

// MaxAgentDescriptionLen bounds Agent.Description.
const MaxAgentDescriptionLen = 1000

// ContactInfo is how clients reach an agent.
type ContactInfo struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address,omitempty"`
}

// Review is one reviewer's rating of an agent. A reviewer reviews an agent at most once.
type Review struct {
	ID         string       `json:"_id"`
	AgentID    string       `json:"-"`
	ReviewerID string       `json:"-"`
	Reviewer   *UserSummary `json:"userId"`
	Rating     int          `json:"rating"`
	Comment    string       `json:"comment"`
	Date       time.Time    `json:"date"`
}

// Agent is a matchmaker business owned by one user.
type Agent struct {
	ID                string       `json:"_id"`
	UserID            string       `json:"-"`
	User              *UserSummary `json:"user"`
	BusinessName      string       `json:"businessName"`
	Experience        int          `json:"experience"`
	Specialization    []string     `json:"specialization"`
	ServingAreas      []string     `json:"servingAreas"`
	ContactInfo       ContactInfo  `json:"contactInfo"`
	Description       string       `json:"description"`
	Clients           []string     `json:"clients"`
	ClientCount       int          `json:"clientCount"`
	SuccessfulMatches int          `json:"successfulMatches"`
	IsVerified        bool         `json:"isVerified"`
	Rating            float64      `json:"rating"`
	Reviews           []*Review    `json:"reviews"`
	IsActive          bool         `json:"isActive"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// AgentUpdate is the allow-listed set of fields an agent may change on its own
// record. Nil fields are left untouched.
type AgentUpdate struct {
	BusinessName      *string
	Experience        *int
	Specialization    []string
	ServingAreas      []string
	ContactInfo       *ContactInfo
	Description       *string
	SuccessfulMatches *int
	IsActive          *bool
}

// Apply merges the set fields of u into a.
func (u *AgentUpdate) Apply(a *Agent) {
	if u.BusinessName != nil {
		a.BusinessName = *u.BusinessName
	}
	if u.Experience != nil {
		a.Experience = *u.Experience
	}
	if u.Specialization != nil {
		a.Specialization = u.Specialization
	}
	if u.ServingAreas != nil {
		a.ServingAreas = u.ServingAreas
	}
	if u.ContactInfo != nil {
		a.ContactInfo = *u.ContactInfo
	}
	if u.Description != nil {
		a.Description = *u.Description
	}
	if u.SuccessfulMatches != nil {
		a.SuccessfulMatches = *u.SuccessfulMatches
	}
	if u.IsActive != nil {
		a.IsActive = *u.IsActive
	}
}

// AgentFilter selects agents for the public directory.
type AgentFilter struct {
	Specializations []string
	Locations       []string
	MinRating       float64
	VerifiedOnly    bool
	Page            int
	Limit           int
}

// Offset is the number of rows skipped for the filter's page.
func (f AgentFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// AverageRating is the arithmetic mean of all review ratings, 0 with no reviews.
func AverageRating(reviews []*Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// HasReviewFrom reports whether reviewerID already reviewed the agent.
func HasReviewFrom(reviews []*Review, reviewerID string) bool {
	for _, r := range reviews {
		if r.ReviewerID == reviewerID {
			return true
		}
	}
	return false
}

// HasClient reports whether userID is in clients.
func HasClient(clients []string, userID string) bool {
	for _, c := range clients {
		if c == userID {
			return true
		}
	}
	return false
}

// ClientCount derives the stored client count from the client list.
func ClientCount(clients []string) int {
	return len(clients)
}
