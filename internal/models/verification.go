package models

import (
	"time"
)

// Verification request statuses. A request leaves pending exactly once.
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// Document types accepted for identity verification.
const (
	DocumentIDCard          = "id_card"
	DocumentPassport        = "passport"
	DocumentDriverLicense   = "driver_license"
	DocumentBusinessLicense = "business_license"
	DocumentOther           = "other"
)

// DocumentTypes lists every accepted document type.
var DocumentTypes = []string{
	DocumentIDCard,
	DocumentPassport,
	DocumentDriverLicense,
	DocumentBusinessLicense,
	DocumentOther,
}

// VerificationRequest is one identity-document submission.
type VerificationRequest struct {
	ID              string       `json:"_id"`
	UserID          string       `json:"-"`
	User            *UserSummary `json:"user,omitempty"`
	DocumentType    string       `json:"documentType"`
	DocumentNumber  string       `json:"documentNumber"`
	DocumentImage   string       `json:"documentImage"`
	Status          string       `json:"status"`
	RejectionReason string       `json:"rejectionReason,omitempty"`
	VerifiedBy      *string      `json:"verifiedBy,omitempty"`
	VerifiedAt      *time.Time   `json:"verifiedAt,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// IsPending reports whether an admin decision is still outstanding.
func (v *VerificationRequest) IsPending() bool {
	return v.Status == VerificationPending
}

// IsValidDocumentType reports whether t is one of DocumentTypes.
func IsValidDocumentType(t string) bool {
	for _, dt := range DocumentTypes {
		if dt == t {
			return true
		}
	}
	return false
}

// IsValidVerificationDecision reports whether d is a terminal verification status.
func IsValidVerificationDecision(d string) bool {
	return d == VerificationApproved || d == VerificationRejected
}
