package store

import (
	"context"
	"sync"
	"time"

	"spectra/internal/ratelimit/models"
)

// InMemoryStore keeps one sliding window of timestamps per key.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

type MemoryOption func(*InMemoryStore)

func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) { s.now = now }
}

func NewInMemory(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Allow(_ context.Context, key string, policy models.Policy) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	hits := expire(s.windows[key], now.Add(-policy.Window))

	if len(hits) >= policy.Limit {
		s.windows[key] = hits
		resetAt := now.Add(policy.Window)
		if len(hits) > 0 {
			resetAt = hits[0].Add(policy.Window)
		}
		return &models.Result{
			Allowed:    false,
			Limit:      policy.Limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: models.RetryAfterSeconds(false, now, resetAt),
		}, nil
	}

	hits = append(hits, now)
	s.windows[key] = hits
	return &models.Result{
		Allowed:   true,
		Limit:     policy.Limit,
		Remaining: policy.Limit - len(hits),
		ResetAt:   hits[0].Add(policy.Window),
	}, nil
}

// Sweep drops keys whose windows have fully expired.
func (s *InMemoryStore) Sweep(window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-window)
	removed := 0
	for key, hits := range s.windows {
		if len(expire(hits, cutoff)) == 0 {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// expire drops timestamps at or before cutoff. hits is sorted.
func expire(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(hits); i++ {
		if hits[i].After(cutoff) {
			break
		}
	}
	return hits[i:]
}
