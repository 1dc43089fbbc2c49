package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"spectra/internal/anchor/models"
	id "spectra/pkg/domain"
)

type accessKey struct {
	user   id.UserID
	anchor id.AnchorID
}

// InMemoryStore keeps anchors in process memory.
type InMemoryStore struct {
	mu       sync.RWMutex
	anchors  map[id.AnchorID]*models.Anchor
	byDomain map[string]id.AnchorID
	access   map[accessKey]time.Time
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		anchors:  make(map[id.AnchorID]*models.Anchor),
		byDomain: make(map[string]id.AnchorID),
		access:   make(map[accessKey]time.Time),
	}
}

func (s *InMemoryStore) Create(_ context.Context, anchor *models.Anchor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byDomain[anchor.Domain]; taken {
		return ErrConflict
	}
	s.anchors[anchor.ID] = anchor.Clone()
	s.byDomain[anchor.Domain] = anchor.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, anchorID id.AnchorID) (*models.Anchor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.anchors[anchorID]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

func (s *InMemoryStore) FindByDomain(_ context.Context, domain string) (*models.Anchor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	anchorID, ok := s.byDomain[domain]
	if !ok {
		return nil, ErrNotFound
	}
	return s.anchors[anchorID].Clone(), nil
}

func (s *InMemoryStore) ListActive(_ context.Context) ([]*models.Anchor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Anchor, 0, len(s.anchors))
	for _, a := range s.anchors {
		if a.IsActive {
			out = append(out, a.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *models.Anchor) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) UpsertAccess(_ context.Context, userID id.UserID, anchorID id.AnchorID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.anchors[anchorID]; !ok {
		return ErrNotFound
	}
	s.access[accessKey{user: userID, anchor: anchorID}] = at
	return nil
}

func (s *InMemoryStore) FindAccess(_ context.Context, userID id.UserID, anchorID id.AnchorID) (*models.Access, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.access[accessKey{user: userID, anchor: anchorID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &models.Access{UserID: userID, AnchorID: anchorID, LastAccessedAt: at}, nil
}
