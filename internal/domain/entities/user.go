package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// KYCStatus represents KYC verification status mirrored from the compliance system
type KYCStatus string

const (
	KYCNotStarted KYCStatus = "not_started"
	KYCInitiated  KYCStatus = "initiated"
	KYCPending    KYCStatus = "pending"
	KYCApproved   KYCStatus = "approved"
)

// AgreementStatus represents the compliance agreement signature status
type AgreementStatus string

const (
	AgreementNotStarted AgreementStatus = "not_started"
	AgreementPending    AgreementStatus = "pending"
	AgreementCompleted  AgreementStatus = "completed"
)

// User represents a user entity, created on first Google OAuth login
type User struct {
	ID              uuid.UUID       `json:"id"`
	GoogleID        string          `json:"-"`
	Email           string          `json:"email"`
	Name            string          `json:"name"`
	KYCStatus       KYCStatus       `json:"kycStatus"`
	AgreementStatus AgreementStatus `json:"agreementStatus"`
	IsCompliant     bool            `json:"isCompliant"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	DeletedAt       null.Time       `json:"-"`
}

// Session is an opaque token-keyed login session. The ID stored server-side
// is the SHA-256 of the token handed to the browser, so a DB leak does not
// leak usable tokens.
type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ComplianceStatus is the payer status mirrored from the compliance API
type ComplianceStatus struct {
	KYCStatus       KYCStatus       `json:"kycStatus"`
	AgreementStatus AgreementStatus `json:"agreementStatus"`
	IsCompliant     bool            `json:"isCompliant"`
	AgreementURL    null.String     `json:"agreementUrl,omitempty"`
	KYCURL          null.String     `json:"kycUrl,omitempty"`
}

// DefaultComplianceStatus is returned when the payer is unknown to the
// compliance system (its API answers 404 until the profile is created).
func DefaultComplianceStatus() *ComplianceStatus {
	return &ComplianceStatus{
		KYCStatus:       KYCNotStarted,
		AgreementStatus: AgreementNotStarted,
		IsCompliant:     false,
	}
}
