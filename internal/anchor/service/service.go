// Package service runs the anchor directory and checks users' live
// credentials against an anchor's required claims.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"spectra/internal/anchor/metrics"
	"spectra/internal/anchor/models"
	credmodels "spectra/internal/credential/models"
	kycmodels "spectra/internal/kyc/models"
	id "spectra/pkg/domain"
	dErrors "spectra/pkg/domain-errors"
	"spectra/pkg/platform/audit"
	"spectra/pkg/platform/privacy"
	"spectra/pkg/platform/sentinel"
	"spectra/pkg/platform/tracer"
	"spectra/pkg/requestcontext"
)

// Store persists anchors and access records.
// Error contract: lookups return sentinel.ErrNotFound; Create returns
// sentinel.ErrConflict for a taken domain.
type Store interface {
	Create(ctx context.Context, anchor *models.Anchor) error
	FindByID(ctx context.Context, anchorID id.AnchorID) (*models.Anchor, error)
	ListActive(ctx context.Context) ([]*models.Anchor, error)
	UpsertAccess(ctx context.Context, userID id.UserID, anchorID id.AnchorID, at time.Time) error
}

type UserLookup interface {
	FindByAccount(ctx context.Context, account string) (*kycmodels.User, error)
}

type CredentialLister interface {
	ListLiveByUser(ctx context.Context, userID id.UserID, now time.Time) ([]*credmodels.Credential, error)
}

// Result is the outcome of a verification. Credentials is empty unless
// Verified.
type Result struct {
	Verified    bool                     `json:"verified"`
	Credentials []*credmodels.Credential `json:"credentials"`
}

func denied() *Result {
	return &Result{Verified: false, Credentials: []*credmodels.Credential{}}
}

type Service struct {
	store       Store
	users       UserLookup
	credentials CredentialLister

	auditor *audit.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditor(a *audit.Logger) Option {
	return func(s *Service) { s.auditor = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func New(store Store, users UserLookup, credentials CredentialLister, opts ...Option) *Service {
	s := &Service{
		store:       store,
		users:       users,
		credentials: credentials,
		tracer:      tracer.NewNoop(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]models.Summary, error) {
	anchors, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list anchors")
	}
	out := make([]models.Summary, 0, len(anchors))
	for _, a := range anchors {
		out = append(out, models.SummaryOf(a))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, rawID string) (*models.Detail, error) {
	anchor, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	detail := models.DetailOf(anchor)
	return &detail, nil
}

// Register adds an anchor to the directory. The request is expected to be
// prepared already.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.Detail, error) {
	now := requestcontext.Now(ctx)
	anchor := &models.Anchor{
		ID:             id.NewAnchorID(),
		Name:           req.Name,
		Domain:         req.Domain,
		PublicKey:      req.PublicKey,
		RequiredClaims: req.RequiredClaims,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if anchor.RequiredClaims == nil {
		anchor.RequiredClaims = []string{}
	}
	if err := s.store.Create(ctx, anchor); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "Anchor domain already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register anchor")
	}

	s.metrics.IncrementRegistrations()
	s.auditor.Log(ctx, audit.Event{
		Action:   audit.ActionAnchorRegistered,
		Resource: anchor.ID.String(),
		ActorID:  requestcontext.AdminActor(ctx),
	})
	s.logger.InfoContext(ctx, "anchor registered",
		"anchor_id", anchor.ID.String(),
		"domain", anchor.Domain,
		"request_id", requestcontext.RequestID(ctx),
	)
	detail := models.DetailOf(anchor)
	return &detail, nil
}

// Verify checks that the account holds a live credential for every claim
// the anchor requires. An unknown account is a plain denial while an
// unknown anchor is an error. Access is recorded only on success.
func (s *Service) Verify(ctx context.Context, account, rawAnchorID string) (result *Result, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanAnchorVerify)
	defer func() { span.End(err) }()

	account, err = id.NormalizeAccount(account)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementVerification(metrics.OutcomeUnknownUser)
			span.SetAttributes(tracer.Bool(tracer.AttrVerified, false))
			return denied(), nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	span.SetAttributes(tracer.String(tracer.AttrUserID, user.ID.String()))

	anchor, err := s.find(ctx, rawAnchorID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrAnchorID, anchor.ID.String()))

	now := requestcontext.Now(ctx)
	creds, err := s.credentials.ListLiveByUser(ctx, user.ID, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credentials")
	}

	if !anchor.Satisfied(creds) {
		span.SetAttributes(tracer.Bool(tracer.AttrVerified, false))
		s.metrics.IncrementVerification(metrics.OutcomeDenied)
		s.auditor.Log(ctx, audit.Event{
			Action:   audit.ActionAnchorAccessDenied,
			UserID:   user.ID,
			Subject:  privacy.MaskAccount(account),
			Resource: anchor.ID.String(),
			Decision: "denied",
			Reason:   "missing_required_claims",
		})
		return denied(), nil
	}

	if err := s.store.UpsertAccess(ctx, user.ID, anchor.ID, now); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record anchor access")
	}

	span.SetAttributes(tracer.Bool(tracer.AttrVerified, true))
	s.metrics.IncrementVerification(metrics.OutcomeGranted)
	s.auditor.Log(ctx, audit.Event{
		Action:   audit.ActionAnchorAccessGranted,
		UserID:   user.ID,
		Subject:  privacy.MaskAccount(account),
		Resource: anchor.ID.String(),
		Decision: "granted",
	})
	s.logger.InfoContext(ctx, "anchor access granted",
		"user_id", user.ID.String(),
		"anchor_id", anchor.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	if creds == nil {
		creds = []*credmodels.Credential{}
	}
	return &Result{Verified: true, Credentials: creds}, nil
}

// find resolves an anchor id, reporting malformed and unknown ids alike.
func (s *Service) find(ctx context.Context, rawID string) (*models.Anchor, error) {
	anchorID, err := id.ParseAnchorID(strings.TrimSpace(rawID))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "Anchor not found")
	}
	anchor, err := s.store.FindByID(ctx, anchorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Anchor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load anchor")
	}
	return anchor, nil
}
