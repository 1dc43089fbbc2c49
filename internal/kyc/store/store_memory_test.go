package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"spectra/internal/kyc/models"
	id "spectra/pkg/domain"
	"spectra/pkg/testutil"
)

type InMemoryStoreSuite struct {
	suite.Suite
	users       *InMemoryUserStore
	submissions *InMemorySubmissionStore
	now         time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.users = NewInMemoryUsers()
	s.submissions = NewInMemorySubmissions()
	s.now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) submission(userID id.UserID, at time.Time) *models.Submission {
	return testutil.NewSubmissionBuilder(userID).At(at).Build()
}

func (s *InMemoryStoreSuite) TestFindOrCreateIsIdempotentPerAccount() {
	ctx := context.Background()
	first, err := s.users.FindOrCreate(ctx, "GUSER", "a@example.com", s.now)
	s.Require().NoError(err)
	second, err := s.users.FindOrCreate(ctx, "GUSER", "b@example.com", s.now.Add(time.Hour))
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal("a@example.com", second.Email, "email is only recorded on creation")

	byAccount, err := s.users.FindByAccount(ctx, "GUSER")
	s.Require().NoError(err)
	s.Equal(first.ID, byAccount.ID)

	_, err = s.users.FindByAccount(ctx, "GOTHER")
	s.ErrorIs(err, ErrNotFound)
	_, err = s.users.FindByID(ctx, id.NewUserID())
	s.ErrorIs(err, ErrNotFound)
}

func (s *InMemoryStoreSuite) TestUpsertOverwritesInPlace() {
	ctx := context.Background()
	userID := id.NewUserID()

	first, err := s.submissions.Upsert(ctx, s.submission(userID, s.now))
	s.Require().NoError(err)
	s.Equal(int64(1), first.Version)

	again := s.submission(userID, s.now.Add(time.Hour))
	again.DocumentHash = "doc-2"
	second, err := s.submissions.Upsert(ctx, again)
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(first.CreatedAt, second.CreatedAt)
	s.Equal(int64(2), second.Version)
	s.Equal("doc-2", second.DocumentHash)
	s.Equal(1, s.submissions.CountByUser(userID))
}

func (s *InMemoryStoreSuite) TestTransitionGuardsVersionAndStatus() {
	ctx := context.Background()
	sub, err := s.submissions.Upsert(ctx, s.submission(id.NewUserID(), s.now))
	s.Require().NoError(err)

	verifiedAt := s.now.Add(5 * time.Second)
	got, err := s.submissions.Transition(ctx, sub.ID, models.Transition{
		FromVersion: sub.Version,
		FromStatus:  models.StatusProcessing,
		To:          models.StatusApproved,
		VerifiedAt:  &verifiedAt,
		At:          verifiedAt,
	})
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, got.Status)
	s.Equal(sub.Version, got.Version, "status writes keep the version")
	s.Require().NotNil(got.VerifiedAt)
	s.True(verifiedAt.Equal(*got.VerifiedAt))

	_, err = s.submissions.Transition(ctx, sub.ID, models.Transition{
		FromVersion: sub.Version,
		FromStatus:  models.StatusProcessing,
		To:          models.StatusNeedsInfo,
		At:          verifiedAt,
	})
	s.ErrorIs(err, ErrStaleVersion, "status already moved on")

	_, err = s.submissions.Transition(ctx, sub.ID, models.Transition{
		FromVersion: sub.Version + 1,
		FromStatus:  models.StatusApproved,
		To:          models.StatusRejected,
		At:          verifiedAt,
	})
	s.ErrorIs(err, ErrStaleVersion, "version mismatch")

	_, err = s.submissions.Transition(ctx, id.NewSubmissionID(), models.Transition{})
	s.ErrorIs(err, ErrNotFound)
}

func (s *InMemoryStoreSuite) TestReturnedCopiesAreDetached() {
	ctx := context.Background()
	sub, err := s.submissions.Upsert(ctx, s.submission(id.NewUserID(), s.now))
	s.Require().NoError(err)

	sub.Status = models.StatusRejected
	stored, err := s.submissions.FindByID(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusProcessing, stored.Status)
}

func (s *InMemoryStoreSuite) TestListStale() {
	ctx := context.Background()
	old := s.submission(id.NewUserID(), s.now.Add(-time.Hour))
	older := s.submission(id.NewUserID(), s.now.Add(-2*time.Hour))
	fresh := s.submission(id.NewUserID(), s.now)
	approved := s.submission(id.NewUserID(), s.now.Add(-3*time.Hour))
	approved.Status = models.StatusApproved
	for _, sub := range []*models.Submission{old, older, fresh, approved} {
		_, err := s.submissions.Upsert(ctx, sub)
		s.Require().NoError(err)
	}

	got, err := s.submissions.ListStale(ctx, models.StatusProcessing, s.now.Add(-time.Minute), 10)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(older.ID, got[0].ID)
	s.Equal(old.ID, got[1].ID)

	limited, err := s.submissions.ListStale(ctx, models.StatusProcessing, s.now.Add(-time.Minute), 1)
	s.Require().NoError(err)
	s.Len(limited, 1)
}
