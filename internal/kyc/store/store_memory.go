package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"spectra/internal/kyc/models"
	id "spectra/pkg/domain"
)

// InMemoryUserStore keeps users in process memory.
type InMemoryUserStore struct {
	mu        sync.RWMutex
	byID      map[id.UserID]*models.User
	byAccount map[string]id.UserID
}

func NewInMemoryUsers() *InMemoryUserStore {
	return &InMemoryUserStore{
		byID:      make(map[id.UserID]*models.User),
		byAccount: make(map[string]id.UserID),
	}
}

func (s *InMemoryUserStore) FindOrCreate(_ context.Context, account, email string, now time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID, ok := s.byAccount[account]; ok {
		u := *s.byID[userID]
		return &u, nil
	}
	u := &models.User{
		ID:        id.NewUserID(),
		Account:   account,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.byID[u.ID] = u
	s.byAccount[account] = u.ID
	cp := *u
	return &cp, nil
}

func (s *InMemoryUserStore) FindByAccount(_ context.Context, account string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byAccount[account]
	if !ok {
		return nil, ErrNotFound
	}
	u := *s.byID[userID]
	return &u, nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// InMemorySubmissionStore keeps one submission per user.
type InMemorySubmissionStore struct {
	mu     sync.RWMutex
	byID   map[id.SubmissionID]*models.Submission
	byUser map[id.UserID]id.SubmissionID
}

func NewInMemorySubmissions() *InMemorySubmissionStore {
	return &InMemorySubmissionStore{
		byID:   make(map[id.SubmissionID]*models.Submission),
		byUser: make(map[id.UserID]id.SubmissionID),
	}
}

func (s *InMemorySubmissionStore) Upsert(_ context.Context, sub *models.Submission) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copySubmission(sub)
	if existingID, ok := s.byUser[sub.UserID]; ok {
		existing := s.byID[existingID]
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
		stored.Version = existing.Version + 1
	} else {
		stored.Version = 1
	}
	s.byID[stored.ID] = stored
	s.byUser[stored.UserID] = stored.ID
	return copySubmission(stored), nil
}

func (s *InMemorySubmissionStore) FindByID(_ context.Context, subID id.SubmissionID) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.byID[subID]
	if !ok {
		return nil, ErrNotFound
	}
	return copySubmission(sub), nil
}

func (s *InMemorySubmissionStore) FindByUserID(_ context.Context, userID id.UserID) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subID, ok := s.byUser[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return copySubmission(s.byID[subID]), nil
}

func (s *InMemorySubmissionStore) Transition(_ context.Context, subID id.SubmissionID, t models.Transition) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.byID[subID]
	if !ok {
		return nil, ErrNotFound
	}
	if sub.Version != t.FromVersion || sub.Status != t.FromStatus {
		return nil, ErrStaleVersion
	}
	sub.Status = t.To
	sub.RejectionReason = t.Reason
	sub.VerifiedAt = t.VerifiedAt
	sub.UpdatedAt = t.At
	return copySubmission(sub), nil
}

func (s *InMemorySubmissionStore) ListStale(_ context.Context, status models.Status, cutoff time.Time, limit int) ([]*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Submission
	for _, sub := range s.byID {
		if sub.Status == status && sub.UpdatedAt.Before(cutoff) {
			out = append(out, copySubmission(sub))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountByUser returns how many submissions userID has, 0 or 1.
func (s *InMemorySubmissionStore) CountByUser(userID id.UserID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sub := range s.byID {
		if sub.UserID == userID {
			n++
		}
	}
	return n
}

func copySubmission(sub *models.Submission) *models.Submission {
	cp := *sub
	if sub.VerifiedAt != nil {
		t := *sub.VerifiedAt
		cp.VerifiedAt = &t
	}
	return &cp
}
