// Package domain provides type-safe identifiers shared across contexts.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "spectra/pkg/domain-errors"
)

type (
	UserID       uuid.UUID
	SubmissionID uuid.UUID
	AnchorID     uuid.UUID
)

// CredentialID is a prefixed identifier, "vc_<uuid>".
type CredentialID string

const credentialIDPrefix = "vc_"

// MaxAccountLength bounds wallet account handles accepted at the boundary.
const MaxAccountLength = 128

func NewUserID() UserID             { return UserID(uuid.New()) }
func NewSubmissionID() SubmissionID { return SubmissionID(uuid.New()) }
func NewAnchorID() AnchorID         { return AnchorID(uuid.New()) }
func NewCredentialID() CredentialID { return CredentialID(credentialIDPrefix + uuid.NewString()) }

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseSubmissionID(s string) (SubmissionID, error) {
	id, err := parseUUID(s, "submission ID")
	return SubmissionID(id), err
}

func ParseAnchorID(s string) (AnchorID, error) {
	id, err := parseUUID(s, "anchor ID")
	return AnchorID(id), err
}

func ParseCredentialID(s string) (CredentialID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "credential ID cannot be empty")
	}
	if !strings.HasPrefix(s, credentialIDPrefix) {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid credential ID format")
	}
	return CredentialID(s), nil
}

// NormalizeAccount trims a wallet account handle and rejects empty or
// oversized values.
func NormalizeAccount(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "stellarAccount is required")
	}
	if len(s) > MaxAccountLength {
		return "", dErrors.New(dErrors.CodeBadRequest, "stellarAccount is too long")
	}
	return s, nil
}

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id SubmissionID) String() string { return uuid.UUID(id).String() }
func (id AnchorID) String() string     { return uuid.UUID(id).String() }
func (id CredentialID) String() string { return string(id) }

func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id SubmissionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id AnchorID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

func (id UserID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id SubmissionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id AnchorID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = UserID(u)
	return err
}

func (id *SubmissionID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = SubmissionID(u)
	return err
}

func (id *AnchorID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = AnchorID(u)
	return err
}

// parseUUID rejects empty, malformed and nil UUIDs.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, label+" cannot be nil")
	}
	return id, nil
}
