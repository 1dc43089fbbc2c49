package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"spectra/internal/credential/models"
	"spectra/internal/zkproof/mockzk"
	id "spectra/pkg/domain"
	"spectra/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) credential(userID id.UserID, t models.Type) *models.Credential {
	return &models.Credential{
		ID:        id.NewCredentialID(),
		UserID:    userID,
		Type:      t,
		Claims:    models.Claims{"verified": true},
		IssuedAt:  s.now,
		ExpiresAt: s.now.Add(models.Validity),
	}
}

func (s *InMemoryStoreSuite) TestReplaceForUserKeepsCardinality() {
	ctx := context.Background()
	userID := id.NewUserID()
	other := id.NewUserID()
	s.Require().NoError(s.store.Save(ctx, s.credential(other, models.TypeAMLCheck)))

	for range 3 {
		creds := []*models.Credential{
			s.credential(userID, models.TypeIdentityVerification),
			s.credential(userID, models.TypeAgeVerification),
			s.credential(userID, models.TypeAMLCheck),
		}
		s.Require().NoError(s.store.ReplaceForUser(ctx, userID, creds))
	}

	live, err := s.store.ListLiveByUser(ctx, userID, s.now)
	s.Require().NoError(err)
	s.Len(live, 3)
	s.Equal(3, s.store.CountByUser(userID))
	s.Equal(1, s.store.CountByUser(other), "other users are untouched")
}

func (s *InMemoryStoreSuite) TestListLiveExcludesRevokedAndExpired() {
	ctx := context.Background()
	userID := id.NewUserID()

	live := s.credential(userID, models.TypeIdentityVerification)
	revoked := s.credential(userID, models.TypeAMLCheck)
	revoked.Revoked = true
	expired := s.credential(userID, models.TypeAgeVerification)
	expired.ExpiresAt = s.now.Add(-time.Minute)

	for _, c := range []*models.Credential{live, revoked, expired} {
		s.Require().NoError(s.store.Save(ctx, c))
	}

	got, err := s.store.ListLiveByUser(ctx, userID, s.now)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(live.ID, got[0].ID)
}

func (s *InMemoryStoreSuite) TestListLiveUnknownUserIsEmptyNotNil() {
	got, err := s.store.ListLiveByUser(context.Background(), id.NewUserID(), s.now)
	s.Require().NoError(err)
	s.NotNil(got)
	s.Empty(got)
}

func (s *InMemoryStoreSuite) TestRevokeIsIdempotent() {
	ctx := context.Background()
	c := s.credential(id.NewUserID(), models.TypeAMLCheck)
	s.Require().NoError(s.store.Save(ctx, c))

	s.Require().NoError(s.store.Revoke(ctx, c.ID))
	s.Require().NoError(s.store.Revoke(ctx, c.ID))

	got, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.True(got.Revoked)
}

func (s *InMemoryStoreSuite) TestRevokeUnknown() {
	err := s.store.Revoke(context.Background(), id.NewCredentialID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestRevokeAllByUser() {
	ctx := context.Background()
	userID := id.NewUserID()
	a := s.credential(userID, models.TypeAMLCheck)
	b := s.credential(userID, models.TypeIdentityVerification)
	b.Revoked = true
	s.Require().NoError(s.store.Save(ctx, a))
	s.Require().NoError(s.store.Save(ctx, b))

	n, err := s.store.RevokeAllByUser(ctx, userID)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func TestInMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	c := &models.Credential{
		ID:        id.NewCredentialID(),
		UserID:    id.NewUserID(),
		Claims:    models.Claims{"passed": true},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, c))

	got, err := store.FindByID(ctx, c.ID)
	require.NoError(t, err)
	got.Claims["passed"] = false
	got.Revoked = true

	again, err := store.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, true, again.Claims["passed"])
	assert.False(t, again.Revoked)
}

func TestInMemoryStoreCopiesZKProof(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	c := &models.Credential{
		ID:        id.NewCredentialID(),
		UserID:    id.NewUserID(),
		Type:      models.TypeAgeVerification,
		ExpiresAt: time.Now().Add(time.Hour),
		Proof: models.Proof{
			Type: models.ProofTypeZK,
			ZKProof: &mockzk.Proof{
				PiA:      []string{"a1", "a2"},
				PiB:      [][]string{{"b1", "b2"}},
				PiC:      []string{"c1"},
				Protocol: mockzk.Protocol,
			},
			PublicSignals: []string{"1", "2001", "18"},
		},
	}
	require.NoError(t, store.Save(ctx, c))
	c.Proof.ZKProof.PiA[0] = "caller-side"

	got, err := store.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotSame(t, c.Proof.ZKProof, got.Proof.ZKProof)
	got.Proof.ZKProof.PiA[0] = "tampered"
	got.Proof.ZKProof.PiB[0][0] = "tampered"
	got.Proof.ZKProof.Protocol = "groth16"

	again, err := store.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, again.Proof.ZKProof.PiA)
	assert.Equal(t, [][]string{{"b1", "b2"}}, again.Proof.ZKProof.PiB)
	assert.Equal(t, mockzk.Protocol, again.Proof.ZKProof.Protocol)
}
