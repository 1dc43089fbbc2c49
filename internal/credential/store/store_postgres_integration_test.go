//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"spectra/internal/credential/models"
	"spectra/internal/credential/store"
	"spectra/internal/zkproof/mockzk"
	id "spectra/pkg/domain"
	"spectra/pkg/platform/sentinel"
	"spectra/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresStoreSuite) newSet(userID id.UserID) []*models.Credential {
	var out []*models.Credential
	for i, t := range models.IssuedTypes {
		c := &models.Credential{
			ID:        id.NewCredentialID(),
			UserID:    userID,
			Type:      t,
			Claims:    models.Claims{"verified": true, "level": "standard"},
			IssuedAt:  s.now.Add(time.Duration(i) * time.Millisecond),
			ExpiresAt: s.now.Add(models.Validity),
			Proof: models.Proof{
				Type:               models.ProofTypeHash,
				Created:            s.now,
				ProofPurpose:       models.ProofPurpose,
				VerificationMethod: models.VerificationMethod,
				JWS:                "deadbeef",
			},
		}
		if t == models.TypeAgeVerification {
			c.Proof = models.Proof{
				Type:          models.ProofTypeZK,
				Created:       s.now,
				ZKProof:       &mockzk.Proof{PiA: []string{"a", "b"}, PiB: [][]string{{"c", "d"}, {"e", "f"}}, PiC: []string{"g", "h"}, Protocol: mockzk.Protocol},
				PublicSignals: []string{"1", "2026", "18"},
			}
		}
		out = append(out, c)
	}
	return out
}

func (s *PostgresStoreSuite) TestReplaceForUserRoundTrip() {
	ctx := context.Background()
	userID := s.postgres.CreateTestUser(ctx, s.T(), "GREPLACE")

	s.Require().NoError(s.store.ReplaceForUser(ctx, userID, s.newSet(userID)))
	second := s.newSet(userID)
	s.Require().NoError(s.store.ReplaceForUser(ctx, userID, second))

	var count int
	s.Require().NoError(s.postgres.QueryRow(ctx, `SELECT COUNT(*) FROM credentials WHERE user_id = $1`, userID.String()).Scan(&count))
	s.Equal(3, count)

	live, err := s.store.ListLiveByUser(ctx, userID, s.now)
	s.Require().NoError(err)
	s.Require().Len(live, 3)
	s.Equal(second[0].ID, live[0].ID)
	s.Equal(true, live[0].Claims["verified"])
	s.True(live[1].Proof.IsZK())
	s.Equal([]string{"1", "2026", "18"}, live[1].Proof.PublicSignals)
	s.Equal("deadbeef", live[2].Proof.JWS)
}

func (s *PostgresStoreSuite) TestReplaceForUserIsAtomic() {
	ctx := context.Background()
	userID := s.postgres.CreateTestUser(ctx, s.T(), "GATOMIC")
	original := s.newSet(userID)
	s.Require().NoError(s.store.ReplaceForUser(ctx, userID, original))

	broken := s.newSet(userID)
	broken[2].ID = broken[0].ID

	s.Require().Error(s.store.ReplaceForUser(ctx, userID, broken))

	live, err := s.store.ListLiveByUser(ctx, userID, s.now)
	s.Require().NoError(err)
	s.Require().Len(live, 3)
	s.Equal(original[0].ID, live[0].ID, "failed replace leaves the previous set")
}

func (s *PostgresStoreSuite) TestLiveFilter() {
	ctx := context.Background()
	userID := s.postgres.CreateTestUser(ctx, s.T(), "GFILTER")
	set := s.newSet(userID)
	set[0].Revoked = true
	set[1].ExpiresAt = s.now.Add(-time.Hour)
	for _, c := range set {
		s.Require().NoError(s.store.Save(ctx, c))
	}

	live, err := s.store.ListLiveByUser(ctx, userID, s.now)
	s.Require().NoError(err)
	s.Require().Len(live, 1)
	s.Equal(models.TypeAMLCheck, live[0].Type)
}

func (s *PostgresStoreSuite) TestRevoke() {
	ctx := context.Background()
	userID := s.postgres.CreateTestUser(ctx, s.T(), "GREVOKE")
	set := s.newSet(userID)
	s.Require().NoError(s.store.ReplaceForUser(ctx, userID, set))

	s.Require().NoError(s.store.Revoke(ctx, set[0].ID))
	s.Require().NoError(s.store.Revoke(ctx, set[0].ID))
	s.ErrorIs(s.store.Revoke(ctx, id.NewCredentialID()), sentinel.ErrNotFound)

	got, err := s.store.FindByID(ctx, set[0].ID)
	s.Require().NoError(err)
	s.True(got.Revoked)

	n, err := s.store.RevokeAllByUser(ctx, userID)
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *PostgresStoreSuite) TestConcurrentReplaceNeverDuplicates() {
	ctx := context.Background()
	userID := s.postgres.CreateTestUser(ctx, s.T(), "GRACE")

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.store.ReplaceForUser(ctx, userID, s.newSet(userID))
		}()
	}
	wg.Wait()

	live, err := s.store.ListLiveByUser(ctx, userID, s.now)
	s.Require().NoError(err)
	s.Len(live, 3)
}
