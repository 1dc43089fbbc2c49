package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"spectra/internal/credential/models"
	id "spectra/pkg/domain"
)

// InMemoryStore keeps credentials in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[id.CredentialID]*models.Credential
	byUser map[id.UserID][]id.CredentialID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[id.CredentialID]*models.Credential),
		byUser: make(map[id.UserID][]id.CredentialID),
	}
}

func (s *InMemoryStore) ReplaceForUser(_ context.Context, userID id.UserID, creds []*models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, credID := range s.byUser[userID] {
		delete(s.byID, credID)
	}
	ids := make([]id.CredentialID, 0, len(creds))
	for _, c := range creds {
		cp := copyCredential(c)
		s.byID[cp.ID] = cp
		ids = append(ids, cp.ID)
	}
	s.byUser[userID] = ids
	return nil
}

func (s *InMemoryStore) Save(_ context.Context, cred *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[cred.ID]; !exists {
		s.byUser[cred.UserID] = append(s.byUser[cred.UserID], cred.ID)
	}
	s.byID[cred.ID] = copyCredential(cred)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, credID id.CredentialID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[credID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyCredential(c), nil
}

// ListLiveByUser returns live credentials ordered by issue time.
func (s *InMemoryStore) ListLiveByUser(_ context.Context, userID id.UserID, now time.Time) ([]*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Credential{}
	for _, credID := range s.byUser[userID] {
		if c := s.byID[credID]; c != nil && c.IsLive(now) {
			out = append(out, copyCredential(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IssuedAt.Before(out[j].IssuedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Revoke(_ context.Context, credID id.CredentialID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[credID]
	if !ok {
		return ErrNotFound
	}
	c.Revoked = true
	return nil
}

func (s *InMemoryStore) RevokeAllByUser(_ context.Context, userID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, credID := range s.byUser[userID] {
		if c := s.byID[credID]; c != nil && !c.Revoked {
			c.Revoked = true
			count++
		}
	}
	return count, nil
}

// CountByUser returns how many credentials, live or not, userID holds.
func (s *InMemoryStore) CountByUser(userID id.UserID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser[userID])
}

func copyCredential(c *models.Credential) *models.Credential {
	cp := *c
	if c.Claims != nil {
		cp.Claims = make(models.Claims, len(c.Claims))
		for k, v := range c.Claims {
			cp.Claims[k] = v
		}
	}
	if c.Proof.PublicSignals != nil {
		cp.Proof.PublicSignals = append([]string(nil), c.Proof.PublicSignals...)
	}
	cp.Proof.ZKProof = c.Proof.ZKProof.Clone()
	return &cp
}
