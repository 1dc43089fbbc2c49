// Package store persists anchors and the per-user access trail.
//
// Error contract: lookups of a missing anchor return sentinel.ErrNotFound;
// registering a domain that is already taken returns sentinel.ErrConflict.
package store

import (
	"context"
	"time"

	"spectra/internal/anchor/models"
	id "spectra/pkg/domain"
	"spectra/pkg/platform/sentinel"
)

var (
	ErrNotFound = sentinel.ErrNotFound
	ErrConflict = sentinel.ErrConflict
)

type Store interface {
	Create(ctx context.Context, anchor *models.Anchor) error
	FindByID(ctx context.Context, anchorID id.AnchorID) (*models.Anchor, error)
	FindByDomain(ctx context.Context, domain string) (*models.Anchor, error)
	// ListActive returns active anchors ordered by creation time.
	ListActive(ctx context.Context) ([]*models.Anchor, error)
	// UpsertAccess records a successful verification, refreshing the
	// timestamp when the pair already exists.
	UpsertAccess(ctx context.Context, userID id.UserID, anchorID id.AnchorID, at time.Time) error
	FindAccess(ctx context.Context, userID id.UserID, anchorID id.AnchorID) (*models.Access, error)
}
