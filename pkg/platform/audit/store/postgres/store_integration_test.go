//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "spectra/pkg/domain"
	audit "spectra/pkg/platform/audit"
	"spectra/pkg/platform/audit/store/postgres"
	"spectra/pkg/testutil/containers"
)

type AuditStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.Store
}

func TestAuditStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditStoreSuite))
}

func (s *AuditStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = postgres.New(s.pg.DB)
}

func (s *AuditStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "audit_events"))
}

func (s *AuditStoreSuite) TestAppendAndList() {
	ctx := context.Background()
	userID := id.NewUserID()
	t0 := time.Now().UTC().Truncate(time.Microsecond)

	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Timestamp: t0,
		Action:    audit.ActionSubmissionReceived,
		UserID:    userID,
		Subject:   "GABC...WXYZ",
		RequestID: "req-1",
	}))
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Timestamp: t0.Add(time.Second),
		Action:    audit.ActionSubmissionApproved,
		UserID:    userID,
	}))
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Timestamp: t0,
		Action:    audit.ActionAnchorRegistered,
	}))

	events, err := s.store.ListByUser(ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.ActionSubmissionApproved, events[0].Action)
	s.Equal("GABC...WXYZ", events[1].Subject)
	s.Equal("req-1", events[1].RequestID)
	s.True(t0.Equal(events[1].Timestamp))
}
