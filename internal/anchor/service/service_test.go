package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"spectra/internal/anchor/metrics"
	"spectra/internal/anchor/models"
	"spectra/internal/anchor/service/mocks"
	credmodels "spectra/internal/credential/models"
	kycmodels "spectra/internal/kyc/models"
	id "spectra/pkg/domain"
	dErrors "spectra/pkg/domain-errors"
	"spectra/pkg/platform/audit"
	"spectra/pkg/platform/audit/publisher"
	auditmemory "spectra/pkg/platform/audit/store/memory"
	"spectra/pkg/platform/sentinel"
	"spectra/pkg/requestcontext"
	"spectra/pkg/testutil"
)

const testAccount = "GTESTACCOUNTAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

type ServiceSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	store       *mocks.MockStore
	users       *mocks.MockUserLookup
	credentials *mocks.MockCredentialLister
	auditStore  *auditmemory.InMemoryStore
	metrics     *metrics.Metrics
	service     *Service
	now         time.Time
	ctx         context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.users = mocks.NewMockUserLookup(s.ctrl)
	s.credentials = mocks.NewMockCredentialLister(s.ctrl)
	s.auditStore = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	s.service = New(s.store, s.users, s.credentials,
		WithLogger(logger),
		WithAuditor(audit.NewLogger(logger, publisher.New(s.auditStore))),
		WithMetrics(s.metrics),
	)
	s.now = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) actions() []audit.Action {
	var out []audit.Action
	for _, e := range s.auditStore.All() {
		out = append(out, e.Action)
	}
	return out
}

func (s *ServiceSuite) TestVerify() {
	user := &kycmodels.User{ID: id.NewUserID(), Account: testAccount}

	s.Run("grants access when every claim is held", func() {
		anchor := testutil.NewAnchorBuilder().Requiring(credmodels.TypeIdentityVerification, credmodels.TypeAMLCheck).Build()
		creds := testutil.Credentials(user.ID, credmodels.TypeIdentityVerification, credmodels.TypeAgeVerification, credmodels.TypeAMLCheck)
		s.users.EXPECT().FindByAccount(gomock.Any(), testAccount).Return(user, nil)
		s.store.EXPECT().FindByID(gomock.Any(), anchor.ID).Return(anchor, nil)
		s.credentials.EXPECT().ListLiveByUser(gomock.Any(), user.ID, s.now).Return(creds, nil)
		s.store.EXPECT().UpsertAccess(gomock.Any(), user.ID, anchor.ID, s.now).Return(nil)

		result, err := s.service.Verify(s.ctx, "  "+testAccount+" ", anchor.ID.String())
		s.Require().NoError(err)
		s.True(result.Verified)
		s.Len(result.Credentials, 3)
		s.Contains(s.actions(), audit.ActionAnchorAccessGranted)
	})

	s.Run("partial match denies without recording access", func() {
		anchor := testutil.NewAnchorBuilder().Requiring(credmodels.TypeIdentityVerification, credmodels.TypeAMLCheck).Build()
		creds := testutil.Credentials(user.ID, credmodels.TypeIdentityVerification)
		s.users.EXPECT().FindByAccount(gomock.Any(), testAccount).Return(user, nil)
		s.store.EXPECT().FindByID(gomock.Any(), anchor.ID).Return(anchor, nil)
		s.credentials.EXPECT().ListLiveByUser(gomock.Any(), user.ID, s.now).Return(creds, nil)

		result, err := s.service.Verify(s.ctx, testAccount, anchor.ID.String())
		s.Require().NoError(err)
		s.False(result.Verified)
		s.NotNil(result.Credentials)
		s.Empty(result.Credentials)
		s.Contains(s.actions(), audit.ActionAnchorAccessDenied)
	})

	s.Run("empty requirement grants access", func() {
		anchor := testutil.NewAnchorBuilder().Requiring().Build()
		s.users.EXPECT().FindByAccount(gomock.Any(), testAccount).Return(user, nil)
		s.store.EXPECT().FindByID(gomock.Any(), anchor.ID).Return(anchor, nil)
		s.credentials.EXPECT().ListLiveByUser(gomock.Any(), user.ID, s.now).Return(nil, nil)
		s.store.EXPECT().UpsertAccess(gomock.Any(), user.ID, anchor.ID, s.now).Return(nil)

		result, err := s.service.Verify(s.ctx, testAccount, anchor.ID.String())
		s.Require().NoError(err)
		s.True(result.Verified)
		s.NotNil(result.Credentials)
	})

	s.Run("unknown user is a denial", func() {
		s.users.EXPECT().FindByAccount(gomock.Any(), testAccount).Return(nil, sentinel.ErrNotFound)

		result, err := s.service.Verify(s.ctx, testAccount, id.NewAnchorID().String())
		s.Require().NoError(err)
		s.False(result.Verified)
		s.Empty(result.Credentials)
		s.Equal(1.0, promtestutil.ToFloat64(s.metrics.Verifications.WithLabelValues(metrics.OutcomeUnknownUser)))
	})

	s.Run("unknown anchor is not found", func() {
		anchorID := id.NewAnchorID()
		s.users.EXPECT().FindByAccount(gomock.Any(), testAccount).Return(user, nil)
		s.store.EXPECT().FindByID(gomock.Any(), anchorID).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Verify(s.ctx, testAccount, anchorID.String())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("malformed anchor id is not found", func() {
		s.users.EXPECT().FindByAccount(gomock.Any(), testAccount).Return(user, nil)

		_, err := s.service.Verify(s.ctx, testAccount, "not-a-uuid")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("missing account is a bad request", func() {
		_, err := s.service.Verify(s.ctx, "  ", id.NewAnchorID().String())
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("credential load failure is internal", func() {
		anchor := testutil.NewAnchorBuilder().Build()
		s.users.EXPECT().FindByAccount(gomock.Any(), testAccount).Return(user, nil)
		s.store.EXPECT().FindByID(gomock.Any(), anchor.ID).Return(anchor, nil)
		s.credentials.EXPECT().ListLiveByUser(gomock.Any(), user.ID, s.now).Return(nil, errors.New("db down"))

		_, err := s.service.Verify(s.ctx, testAccount, anchor.ID.String())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("access write failure is internal", func() {
		anchor := testutil.NewAnchorBuilder().Build()
		s.users.EXPECT().FindByAccount(gomock.Any(), testAccount).Return(user, nil)
		s.store.EXPECT().FindByID(gomock.Any(), anchor.ID).Return(anchor, nil)
		s.credentials.EXPECT().ListLiveByUser(gomock.Any(), user.ID, s.now).
			Return(testutil.Credentials(user.ID, credmodels.TypeIdentityVerification), nil)
		s.store.EXPECT().UpsertAccess(gomock.Any(), user.ID, anchor.ID, s.now).Return(errors.New("db down"))

		_, err := s.service.Verify(s.ctx, testAccount, anchor.ID.String())
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestList() {
	s.Run("projects active anchors", func() {
		a, b := testutil.NewAnchorBuilder().Build(), testutil.NewAnchorBuilder().Requiring().Build()
		s.store.EXPECT().ListActive(gomock.Any()).Return([]*models.Anchor{a, b}, nil)

		list, err := s.service.List(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(a.ID, list[0].ID)
		s.Equal([]string{"identity_verification"}, list[0].RequiredClaims)
	})

	s.Run("empty directory is an empty list", func() {
		s.store.EXPECT().ListActive(gomock.Any()).Return(nil, nil)

		list, err := s.service.List(s.ctx)
		s.Require().NoError(err)
		s.NotNil(list)
		s.Empty(list)
	})

	s.Run("store failure is internal", func() {
		s.store.EXPECT().ListActive(gomock.Any()).Return(nil, errors.New("db down"))

		_, err := s.service.List(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestGet() {
	s.Run("returns the detail view", func() {
		a := testutil.NewAnchorBuilder().Requiring(credmodels.TypeAMLCheck).Build()
		s.store.EXPECT().FindByID(gomock.Any(), a.ID).Return(a, nil)

		detail, err := s.service.Get(s.ctx, a.ID.String())
		s.Require().NoError(err)
		s.Equal(a.Domain, detail.Domain)
		s.True(detail.IsActive)
	})

	s.Run("unknown id is not found", func() {
		anchorID := id.NewAnchorID()
		s.store.EXPECT().FindByID(gomock.Any(), anchorID).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Get(s.ctx, anchorID.String())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestRegister() {
	req := &models.RegisterRequest{
		Name:           "Anchor C",
		Domain:         "anchor-c.stellar.demo",
		PublicKey:      "GANCHORC",
		RequiredClaims: []string{"aml_check"},
	}

	s.Run("creates an active anchor", func() {
		var created *models.Anchor
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, a *models.Anchor) error {
				created = a
				return nil
			})

		detail, err := s.service.Register(s.ctx, req)
		s.Require().NoError(err)
		s.Require().NotNil(created)
		s.Equal(created.ID, detail.ID)
		s.True(created.IsActive)
		s.Equal(s.now, created.CreatedAt)
		s.Equal([]string{"aml_check"}, detail.RequiredClaims)
		s.Contains(s.actions(), audit.ActionAnchorRegistered)
		s.Equal(1.0, promtestutil.ToFloat64(s.metrics.Registrations))
	})

	s.Run("duplicate domain conflicts", func() {
		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

		_, err := s.service.Register(s.ctx, req)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}
