// Package models defines users, KYC submissions and the status machine.
package models

import (
	"time"

	id "spectra/pkg/domain"
	"spectra/pkg/secrets"
)

// Status is a submission's lifecycle state.
//
//	PROCESSING -> APPROVED | NEEDS_INFO | REJECTED
//	any        -> PROCESSING (resubmission)
//	APPROVED | NEEDS_INFO -> REJECTED (admin)
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusApproved   Status = "APPROVED"
	StatusNeedsInfo  Status = "NEEDS_INFO"
	StatusRejected   Status = "REJECTED"

	// StatusNotSubmitted is a projection value only, never stored.
	StatusNotSubmitted Status = "NOT_SUBMITTED"
)

// ReasonServiceUnavailable is the only reason written on automatic moves to
// NEEDS_INFO, whether verification failed or the sweeper gave up on it.
const ReasonServiceUnavailable = "verification service temporarily unavailable"

// CanTransitionTo reports whether a status write from s to next is allowed
// outside resubmission.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusProcessing:
		return next == StatusApproved || next == StatusNeedsInfo || next == StatusRejected
	case StatusApproved, StatusNeedsInfo:
		return next == StatusRejected
	default:
		return false
	}
}

type DocumentType string

const (
	DocumentPassport      DocumentType = "passport"
	DocumentDriverLicense DocumentType = "driver_license"
	DocumentNationalID    DocumentType = "national_id"
)

// User is created lazily on first submission and never deleted.
type User struct {
	ID        id.UserID `json:"id"`
	Account   string    `json:"stellarAccount"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Submission is the single, overwritable KYC record of a user. Encrypted
// and DataHash are always set together. Version increases on every
// resubmission; status writes leave it unchanged.
type Submission struct {
	ID              id.SubmissionID
	UserID          id.UserID
	Encrypted       secrets.Sealed
	DataHash        string
	DocumentType    DocumentType
	DocumentHash    string
	SelfieHash      string
	Status          Status
	RejectionReason string
	VerifiedAt      *time.Time
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Transition is a guarded status write: it applies only while the stored
// submission still has FromVersion and FromStatus.
type Transition struct {
	FromVersion int64
	FromStatus  Status
	To          Status
	Reason      string
	VerifiedAt  *time.Time
	At          time.Time
}
