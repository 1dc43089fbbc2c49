// Package store persists issued credentials.
//
// Error contract: lookups of a missing credential return sentinel.ErrNotFound;
// infrastructure failures are wrapped with context.
package store

import (
	"context"
	"time"

	"spectra/internal/credential/models"
	id "spectra/pkg/domain"
	"spectra/pkg/platform/sentinel"
)

var ErrNotFound = sentinel.ErrNotFound

type Store interface {
	// ReplaceForUser deletes every credential of userID and inserts creds as
	// one atomic unit.
	ReplaceForUser(ctx context.Context, userID id.UserID, creds []*models.Credential) error
	Save(ctx context.Context, cred *models.Credential) error
	FindByID(ctx context.Context, credID id.CredentialID) (*models.Credential, error)
	ListLiveByUser(ctx context.Context, userID id.UserID, now time.Time) ([]*models.Credential, error)
	// Revoke marks the credential revoked. Revoking twice succeeds.
	Revoke(ctx context.Context, credID id.CredentialID) error
	RevokeAllByUser(ctx context.Context, userID id.UserID) (int, error)
}
