package audit

import (
	"context"
	"time"

	id "spectra/pkg/domain"
)

// Event records one security-relevant action. It never carries personal
// data: Subject is a masked account handle, Resource an opaque id.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	UserID    id.UserID `json:"userId"`
	Subject   string    `json:"subject,omitempty"`
	Resource  string    `json:"resource,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	ActorID   string    `json:"actorId,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
}

type Action string

const (
	ActionSubmissionReceived  Action = "kyc_submission_received"
	ActionSubmissionApproved  Action = "kyc_submission_approved"
	ActionSubmissionNeedsInfo Action = "kyc_submission_needs_info"
	ActionSubmissionRejected  Action = "kyc_submission_rejected"
	ActionCredentialsIssued   Action = "credentials_issued"
	ActionCredentialRevoked   Action = "credential_revoked"
	ActionAnchorAccessGranted Action = "anchor_access_granted"
	ActionAnchorAccessDenied  Action = "anchor_access_denied"
	ActionAnchorRegistered    Action = "anchor_registered"
)

// Store persists events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}

// Emitter accepts events for publication.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
