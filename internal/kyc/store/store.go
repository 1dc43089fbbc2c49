// Package store persists users and KYC submissions.
//
// Error contract: missing records return sentinel.ErrNotFound; a guarded
// write whose precondition no longer holds returns sentinel.ErrStaleVersion.
package store

import (
	"context"
	"time"

	"spectra/internal/kyc/models"
	id "spectra/pkg/domain"
	"spectra/pkg/platform/sentinel"
)

var (
	ErrNotFound     = sentinel.ErrNotFound
	ErrStaleVersion = sentinel.ErrStaleVersion
)

type UserStore interface {
	// FindOrCreate returns the user for account, creating it atomically.
	// Email is only recorded on creation.
	FindOrCreate(ctx context.Context, account, email string, now time.Time) (*models.User, error)
	FindByAccount(ctx context.Context, account string) (*models.User, error)
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
}

type SubmissionStore interface {
	// Upsert creates the user's submission or overwrites it in place. An
	// overwrite keeps ID and CreatedAt and bumps Version. The stored row is
	// returned.
	Upsert(ctx context.Context, sub *models.Submission) (*models.Submission, error)
	FindByID(ctx context.Context, subID id.SubmissionID) (*models.Submission, error)
	FindByUserID(ctx context.Context, userID id.UserID) (*models.Submission, error)
	Transition(ctx context.Context, subID id.SubmissionID, t models.Transition) (*models.Submission, error)
	// ListStale returns submissions in status last updated before cutoff.
	ListStale(ctx context.Context, status models.Status, cutoff time.Time, limit int) ([]*models.Submission, error)
}
