package memory

import (
	"context"
	"sync"

	id "spectra/pkg/domain"
	audit "spectra/pkg/platform/audit"
)

// InMemoryStore keeps events in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByUser returns userID's events, newest first.
func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].UserID == userID {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

// All returns a copy of every stored event in append order.
func (s *InMemoryStore) All() []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}
