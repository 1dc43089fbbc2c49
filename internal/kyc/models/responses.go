package models

import (
	"time"

	id "spectra/pkg/domain"
)

type SubmitResult struct {
	SubmissionID id.SubmissionID `json:"submissionId"`
	Status       Status          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// StatusView is the outward projection of a submission. Ciphertext and
// hashes are never part of it.
type StatusView struct {
	ID              *id.SubmissionID `json:"id,omitempty"`
	Status          Status           `json:"status"`
	VerifiedAt      *time.Time       `json:"verifiedAt,omitempty"`
	RejectionReason string           `json:"rejectionReason,omitempty"`
	CreatedAt       *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time       `json:"updatedAt,omitempty"`
}

func NotSubmitted() StatusView {
	return StatusView{Status: StatusNotSubmitted}
}

func ViewOf(s *Submission) StatusView {
	subID := s.ID
	created, updated := s.CreatedAt, s.UpdatedAt
	return StatusView{
		ID:              &subID,
		Status:          s.Status,
		VerifiedAt:      s.VerifiedAt,
		RejectionReason: s.RejectionReason,
		CreatedAt:       &created,
		UpdatedAt:       &updated,
	}
}
