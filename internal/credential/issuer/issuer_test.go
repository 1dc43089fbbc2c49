package issuer

//go:generate mockgen -source=issuer.go -destination=mocks/mocks.go -package=mocks Store,ProofEngine

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"spectra/internal/credential/issuer/mocks"
	"spectra/internal/credential/metrics"
	"spectra/internal/credential/models"
	"spectra/internal/credential/store"
	"spectra/internal/zkproof/mockzk"
	id "spectra/pkg/domain"
	dErrors "spectra/pkg/domain-errors"
	"spectra/pkg/requestcontext"
)

type IssuerSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	mockStore *mocks.MockStore
	mockZK    *mocks.MockProofEngine
	metrics   *metrics.Metrics
	logs      *bytes.Buffer
	issuer    *Issuer
	now       time.Time
	ctx       context.Context
}

func TestIssuerSuite(t *testing.T) {
	suite.Run(t, new(IssuerSuite))
}

func (s *IssuerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.mockZK = mocks.NewMockProofEngine(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.logs = &bytes.Buffer{}
	s.issuer = New(s.mockStore, s.mockZK,
		WithLogger(slog.New(slog.NewJSONHandler(s.logs, nil))),
		WithMetrics(s.metrics),
	)
	s.now = time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *IssuerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *IssuerSuite) TestIssueAllMintsThreeTypes() {
	userID := id.NewUserID()
	s.mockZK.EXPECT().
		GenerateAgeProof(2001, 2026, 18).
		Return(mockzk.New().GenerateAgeProof(2001, 2026, 18))

	var stored []*models.Credential
	s.mockStore.EXPECT().
		ReplaceForUser(gomock.Any(), userID, gomock.Len(3)).
		DoAndReturn(func(_ context.Context, _ id.UserID, creds []*models.Credential) error {
			stored = creds
			return nil
		})

	creds, err := s.issuer.IssueAll(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(creds, 3)
	s.Equal(stored, creds)

	s.Equal(models.TypeIdentityVerification, creds[0].Type)
	s.Equal(models.TypeAgeVerification, creds[1].Type)
	s.Equal(models.TypeAMLCheck, creds[2].Type)

	for _, c := range creds {
		s.Equal(userID, c.UserID)
		s.Equal(s.now, c.IssuedAt)
		s.Equal(s.now.Add(365*24*time.Hour), c.ExpiresAt)
		s.False(c.Revoked)
		s.Contains(c.ID.String(), "vc_")
		s.Equal(models.ProofPurpose, c.Proof.ProofPurpose)
		s.Equal(models.VerificationMethod, c.Proof.VerificationMethod)
	}

	s.Equal(true, creds[0].Claims["verified"])
	s.Equal("document_selfie", creds[0].Claims["method"])
	s.Equal(true, creds[1].Claims["over18"])
	s.Equal(true, creds[1].Claims["over21"])
	s.Equal("low", creds[2].Claims["riskLevel"])
	s.Equal("2026-10-16T08:30:00Z", creds[2].Claims["checkedAt"])

	s.True(creds[1].Proof.IsZK())
	s.Equal([]string{"1", "2026", "18"}, creds[1].Proof.PublicSignals)
	s.Equal(mockzk.Protocol, creds[1].Proof.ZKProof.Protocol)

	s.Equal(models.ProofTypeHash, creds[0].Proof.Type)
	s.Len(creds[0].Proof.JWS, 64)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.CredentialsIssued.WithLabelValues("age_verification", models.ProofTypeZK)))
}

func (s *IssuerSuite) TestAgeProofFailureFallsBackToHashProof() {
	userID := id.NewUserID()
	s.mockZK.EXPECT().
		GenerateAgeProof(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(mockzk.Result{}, mockzk.ErrProofGeneration)
	s.mockStore.EXPECT().ReplaceForUser(gomock.Any(), userID, gomock.Len(3)).Return(nil)

	creds, err := s.issuer.IssueAll(s.ctx, userID)
	s.Require().NoError(err)

	age := creds[1]
	s.Equal(models.TypeAgeVerification, age.Type)
	s.Equal(models.ProofTypeHash, age.Proof.Type)
	s.NotEmpty(age.Proof.JWS)
	s.Nil(age.Proof.ZKProof)

	s.Equal(float64(1), testutil.ToFloat64(s.metrics.ProofFallbacks.WithLabelValues("age_verification")))
	s.Contains(s.logs.String(), "falling back to hash proof")
}

func (s *IssuerSuite) TestStoreFailureIsInternal() {
	s.mockZK.EXPECT().GenerateAgeProof(gomock.Any(), gomock.Any(), gomock.Any()).Return(mockzk.New().GenerateAgeProof(2001, 2026, 18))
	s.mockStore.EXPECT().ReplaceForUser(gomock.Any(), gomock.Any(), gomock.Any()).Return(assert.AnError)

	_, err := s.issuer.IssueAll(s.ctx, id.NewUserID())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *IssuerSuite) TestIssueOneUsesGivenClaims() {
	userID := id.NewUserID()
	claims := models.Claims{"passed": false, "riskLevel": "high"}
	s.mockStore.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	c, err := s.issuer.IssueOne(s.ctx, userID, models.TypeAMLCheck, claims)
	s.Require().NoError(err)
	s.Equal(claims, c.Claims)
	s.Equal(models.ProofTypeHash, c.Proof.Type)
}

func TestHashProofIsDeterministic(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	claims := models.Claims{"b": 2, "a": 1}

	p1, err := hashProof(models.TypeAMLCheck, claims, now)
	require.NoError(t, err)
	p2, err := hashProof(models.TypeAMLCheck, models.Claims{"a": 1, "b": 2}, now)
	require.NoError(t, err)
	assert.Equal(t, p1.JWS, p2.JWS)

	p3, err := hashProof(models.TypeAMLCheck, models.Claims{"a": 1, "b": 3}, now)
	require.NoError(t, err)
	assert.NotEqual(t, p1.JWS, p3.JWS, "tampered claims change the digest")

	p4, err := hashProof(models.TypeIdentityVerification, claims, now)
	require.NoError(t, err)
	assert.NotEqual(t, p1.JWS, p4.JWS)
}

// Against the real store and engine, repeated approvals never accumulate
// credentials.
func TestIssueAllCardinalityWithInMemoryStore(t *testing.T) {
	st := store.NewInMemory()
	iss := New(st, mockzk.New(), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	userID := id.NewUserID()
	ctx := context.Background()

	for range 4 {
		_, err := iss.IssueAll(ctx, userID)
		require.NoError(t, err)
	}

	live, err := st.ListLiveByUser(ctx, userID, time.Now())
	require.NoError(t, err)
	assert.Len(t, live, 3)
	assert.Equal(t, 3, st.CountByUser(userID))
}
