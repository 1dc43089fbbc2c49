// Package store keeps sliding-window request counters keyed by client.
package store

import (
	"context"

	"spectra/internal/ratelimit/models"
)

type Store interface {
	// Allow records one request under key when the policy still has room.
	Allow(ctx context.Context, key string, policy models.Policy) (*models.Result, error)
}

var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
