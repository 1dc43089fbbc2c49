// Package service runs the KYC submission lifecycle: intake, asynchronous
// verification, status projection, credential access and operator
// actions.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	credmetrics "spectra/internal/credential/metrics"
	credmodels "spectra/internal/credential/models"
	"spectra/internal/kyc/metrics"
	"spectra/internal/kyc/models"
	"spectra/internal/kyc/queue"
	"spectra/internal/zkproof/mockzk"
	id "spectra/pkg/domain"
	dErrors "spectra/pkg/domain-errors"
	"spectra/pkg/platform/audit"
	"spectra/pkg/platform/privacy"
	"spectra/pkg/platform/sentinel"
	psync "spectra/pkg/platform/sync"
	"spectra/pkg/platform/tracer"
	"spectra/pkg/requestcontext"
	"spectra/pkg/secrets"
	"spectra/pkg/validation"
)

// UserStore resolves wallet accounts to users.
// Error contract: lookups return sentinel.ErrNotFound when no user exists.
type UserStore interface {
	FindOrCreate(ctx context.Context, account, email string, now time.Time) (*models.User, error)
	FindByAccount(ctx context.Context, account string) (*models.User, error)
}

// SubmissionStore persists the one submission each user has.
// Error contract: Transition returns sentinel.ErrStaleVersion when the
// stored version or status moved on.
type SubmissionStore interface {
	Upsert(ctx context.Context, sub *models.Submission) (*models.Submission, error)
	FindByID(ctx context.Context, subID id.SubmissionID) (*models.Submission, error)
	FindByUserID(ctx context.Context, userID id.UserID) (*models.Submission, error)
	Transition(ctx context.Context, subID id.SubmissionID, t models.Transition) (*models.Submission, error)
	ListStale(ctx context.Context, status models.Status, cutoff time.Time, limit int) ([]*models.Submission, error)
}

type CredentialStore interface {
	FindByID(ctx context.Context, credID id.CredentialID) (*credmodels.Credential, error)
	ListLiveByUser(ctx context.Context, userID id.UserID, now time.Time) ([]*credmodels.Credential, error)
	Revoke(ctx context.Context, credID id.CredentialID) error
	RevokeAllByUser(ctx context.Context, userID id.UserID) (int, error)
}

type Issuer interface {
	IssueAll(ctx context.Context, userID id.UserID) ([]*credmodels.Credential, error)
}

type TaskQueue interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

type Cipher interface {
	Encrypt(v any) (secrets.Sealed, error)
}

type AgeProofVerifier interface {
	VerifyAgeProof(proof *mockzk.Proof, publicSignals []string) bool
}

const (
	defaultStartDelay   = 2 * time.Second
	defaultProcessDelay = 3 * time.Second
	sweepBatchSize      = 100
)

type Service struct {
	users       UserStore
	submissions SubmissionStore
	credentials CredentialStore
	issuer      Issuer
	tasks       TaskQueue
	cipher      Cipher
	ageVerifier AgeProofVerifier

	locks        *psync.ShardedMutex
	auditor      *audit.Logger
	metrics      *metrics.Metrics
	credMetrics  *credmetrics.Metrics
	tracer       tracer.Tracer
	logger       *slog.Logger
	startDelay   time.Duration
	processDelay time.Duration
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

// WithCredentialMetrics records revocations on the credential collectors.
func WithCredentialMetrics(m *credmetrics.Metrics) Option {
	return func(s *Service) { s.credMetrics = m }
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func WithAgeProofVerifier(v AgeProofVerifier) Option {
	return func(s *Service) { s.ageVerifier = v }
}

// WithDelays sets the pause before verification starts and the pause
// between its start and completion. Non-positive values keep the defaults.
func WithDelays(start, process time.Duration) Option {
	return func(s *Service) {
		if start > 0 {
			s.startDelay = start
		}
		if process > 0 {
			s.processDelay = process
		}
	}
}

func New(
	users UserStore,
	submissions SubmissionStore,
	credentials CredentialStore,
	issuer Issuer,
	tasks TaskQueue,
	cipher Cipher,
	opts ...Option,
) *Service {
	s := &Service{
		users:        users,
		submissions:  submissions,
		credentials:  credentials,
		issuer:       issuer,
		tasks:        tasks,
		cipher:       cipher,
		locks:        psync.NewShardedMutex(),
		tracer:       tracer.NewNoop(),
		logger:       slog.Default(),
		startDelay:   defaultStartDelay,
		processDelay: defaultProcessDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessDelay is the pause between the start and completion stages.
func (s *Service) ProcessDelay() time.Duration {
	return s.processDelay
}

// Submit validates, encrypts and stores a submission, then schedules its
// verification. A resubmission overwrites the user's existing submission
// and supersedes any verification still pending for it.
func (s *Service) Submit(ctx context.Context, req *models.SubmitRequest) (result *models.SubmitResult, err error) {
	account, err := id.NormalizeAccount(req.Account)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanKYCSubmit)
	defer func() { span.End(err) }()

	documentHash, err := secrets.HashDocument(req.Files.Document)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "files.document is not a valid base64 image")
	}
	selfieHash, err := secrets.HashDocument(req.Files.Selfie)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "files.selfie is not a valid base64 image")
	}
	dataHash, err := secrets.HashPayload(req.PersonalInfo)
	if err != nil {
		return nil, err
	}
	sealed, err := s.cipher.Encrypt(req.PersonalInfo)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCrypto, "failed to encrypt personal data")
	}

	now := requestcontext.Now(ctx)
	user, err := s.users.FindOrCreate(ctx, account, strings.TrimSpace(req.Email), now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve user")
	}
	span.SetAttributes(tracer.String(tracer.AttrUserID, user.ID.String()))

	var stored *models.Submission
	err = s.locks.Do(user.ID.String(), func() error {
		var upsertErr error
		stored, upsertErr = s.submissions.Upsert(ctx, &models.Submission{
			ID:           id.NewSubmissionID(),
			UserID:       user.ID,
			Encrypted:    sealed,
			DataHash:     dataHash,
			DocumentType: req.PersonalInfo.DocumentType,
			DocumentHash: documentHash,
			SelfieHash:   selfieHash,
			Status:       models.StatusProcessing,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		return upsertErr
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store submission")
	}
	span.SetAttributes(
		tracer.String(tracer.AttrSubmissionID, stored.ID.String()),
		tracer.Int64(tracer.AttrVersion, stored.Version),
	)

	task := queue.Task{
		SubmissionID: stored.ID,
		Version:      stored.Version,
		Stage:        queue.StageStart,
		DueAt:        now.Add(s.startDelay),
	}
	if err := s.tasks.Enqueue(ctx, task); err != nil {
		// The submission stays PROCESSING until the sweeper fails it.
		s.metrics.IncrementTaskFailure(string(queue.StageStart))
		s.logger.ErrorContext(ctx, "failed to schedule verification",
			"error", err,
			"submission_id", stored.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	resubmission := stored.Version > 1
	s.metrics.IncrementSubmissions(resubmission)
	s.auditor.Log(ctx, audit.Event{
		Action:   audit.ActionSubmissionReceived,
		UserID:   user.ID,
		Subject:  privacy.MaskAccount(account),
		Resource: stored.ID.String(),
	})
	s.logger.InfoContext(ctx, "kyc submission accepted",
		"user_id", user.ID.String(),
		"submission_id", stored.ID.String(),
		"version", stored.Version,
		"resubmission", resubmission,
		"request_id", requestcontext.RequestID(ctx),
	)

	return &models.SubmitResult{
		SubmissionID: stored.ID,
		Status:       stored.Status,
		CreatedAt:    stored.CreatedAt,
	}, nil
}

// ProcessVerification decides the submission a completion task points at.
// It does nothing when the submission is gone, was resubmitted since the
// task was scheduled or already left PROCESSING. Otherwise it approves and
// issues credentials; any failure leaves the submission in NEEDS_INFO.
func (s *Service) ProcessVerification(ctx context.Context, subID id.SubmissionID, version int64) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanKYCVerification,
		tracer.String(tracer.AttrSubmissionID, subID.String()),
		tracer.Int64(tracer.AttrVersion, version),
	)
	defer func() { span.End(err) }()

	sub, err := s.submissions.FindByID(ctx, subID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.superseded(ctx, span, subID, version, "submission no longer exists")
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission")
	}

	return s.locks.Do(sub.UserID.String(), func() error {
		current, err := s.submissions.FindByID(ctx, subID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				s.superseded(ctx, span, subID, version, "submission no longer exists")
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission")
		}
		if current.Version != version || current.Status != models.StatusProcessing {
			s.superseded(ctx, span, subID, version, "submission changed since task was scheduled")
			return nil
		}
		return s.approve(ctx, span, current)
	})
}

func (s *Service) approve(ctx context.Context, span tracer.Span, sub *models.Submission) error {
	now := requestcontext.Now(ctx)
	_, err := s.submissions.Transition(ctx, sub.ID, models.Transition{
		FromVersion: sub.Version,
		FromStatus:  models.StatusProcessing,
		To:          models.StatusApproved,
		VerifiedAt:  &now,
		At:          now,
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrStaleVersion) {
			s.superseded(ctx, span, sub.ID, sub.Version, "status write lost to a newer submission")
			return nil
		}
		return s.needsInfo(ctx, span, sub, models.StatusProcessing, err)
	}

	creds, err := s.issuer.IssueAll(ctx, sub.UserID)
	if err != nil {
		return s.needsInfo(ctx, span, sub, models.StatusApproved, err)
	}

	s.metrics.IncrementVerification(metrics.OutcomeApproved)
	s.metrics.ObserveVerificationDuration(now.Sub(sub.UpdatedAt).Seconds())
	span.SetAttributes(tracer.String(tracer.AttrOutcome, metrics.OutcomeApproved))
	s.auditor.Log(ctx, audit.Event{
		Action:   audit.ActionSubmissionApproved,
		UserID:   sub.UserID,
		Resource: sub.ID.String(),
		Decision: string(models.StatusApproved),
	})
	s.auditor.Log(ctx, audit.Event{
		Action:   audit.ActionCredentialsIssued,
		UserID:   sub.UserID,
		Resource: sub.ID.String(),
		Decision: credentialTypes(creds),
	})
	s.logger.InfoContext(ctx, "kyc submission approved",
		"user_id", sub.UserID.String(),
		"submission_id", sub.ID.String(),
		"version", sub.Version,
		"credentials", len(creds),
	)
	return nil
}

// needsInfo records a failed verification. The cause is logged; only the
// fixed reason is stored.
func (s *Service) needsInfo(ctx context.Context, span tracer.Span, sub *models.Submission, from models.Status, cause error) error {
	s.logger.ErrorContext(ctx, "kyc verification failed",
		"error", cause,
		"user_id", sub.UserID.String(),
		"submission_id", sub.ID.String(),
		"version", sub.Version,
	)
	_, err := s.submissions.Transition(ctx, sub.ID, models.Transition{
		FromVersion: sub.Version,
		FromStatus:  from,
		To:          models.StatusNeedsInfo,
		Reason:      models.ReasonServiceUnavailable,
		At:          requestcontext.Now(ctx),
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrStaleVersion) {
			s.superseded(ctx, span, sub.ID, sub.Version, "status write lost to a newer submission")
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification failure")
	}

	s.metrics.IncrementVerification(metrics.OutcomeNeedsInfo)
	span.SetAttributes(tracer.String(tracer.AttrOutcome, metrics.OutcomeNeedsInfo))
	s.auditor.Log(ctx, audit.Event{
		Action:   audit.ActionSubmissionNeedsInfo,
		UserID:   sub.UserID,
		Resource: sub.ID.String(),
		Decision: string(models.StatusNeedsInfo),
		Reason:   models.ReasonServiceUnavailable,
	})
	return nil
}

func (s *Service) superseded(ctx context.Context, span tracer.Span, subID id.SubmissionID, version int64, why string) {
	s.metrics.IncrementVerification(metrics.OutcomeSuperseded)
	span.SetAttributes(tracer.String(tracer.AttrOutcome, metrics.OutcomeSuperseded))
	s.logger.InfoContext(ctx, "verification task skipped",
		"submission_id", subID.String(),
		"version", version,
		"reason", why,
	)
}

// Status projects the account's submission. Unknown accounts and users
// without a submission both read as NOT_SUBMITTED.
func (s *Service) Status(ctx context.Context, account string) (models.StatusView, error) {
	account, err := id.NormalizeAccount(account)
	if err != nil {
		return models.StatusView{}, err
	}
	user, err := s.users.FindByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.NotSubmitted(), nil
		}
		return models.StatusView{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	sub, err := s.submissions.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.NotSubmitted(), nil
		}
		return models.StatusView{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission")
	}
	return models.ViewOf(sub), nil
}

// Credentials lists the account's live credentials; never nil.
func (s *Service) Credentials(ctx context.Context, account string) ([]*credmodels.Credential, error) {
	account, err := id.NormalizeAccount(account)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return []*credmodels.Credential{}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	creds, err := s.credentials.ListLiveByUser(ctx, user.ID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credentials")
	}
	if creds == nil {
		creds = []*credmodels.Credential{}
	}
	return creds, nil
}

// Revoke marks a credential revoked. Revoking twice succeeds; malformed
// and unknown ids are not found.
func (s *Service) Revoke(ctx context.Context, rawID string) error {
	credID, err := id.ParseCredentialID(strings.TrimSpace(rawID))
	if err != nil {
		return dErrors.New(dErrors.CodeNotFound, "credential not found")
	}
	cred, err := s.credentials.FindByID(ctx, credID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
	}
	if err := s.credentials.Revoke(ctx, credID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke credential")
	}
	if cred.Revoked {
		return nil
	}

	s.credMetrics.AddRevoked(1)
	s.auditor.Log(ctx, audit.Event{
		Action:   audit.ActionCredentialRevoked,
		UserID:   cred.UserID,
		Resource: credID.String(),
		Decision: string(cred.Type),
	})
	s.logger.InfoContext(ctx, "credential revoked",
		"user_id", cred.UserID.String(),
		"credential_id", credID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Reject moves a submission to REJECTED and revokes the owner's
// credentials. Only PROCESSING, APPROVED and NEEDS_INFO submissions can be
// rejected.
func (s *Service) Reject(ctx context.Context, rawID, reason string) (view models.StatusView, err error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return models.StatusView{}, dErrors.NewValidation("Validation error: Reason is required", []string{"Reason is required"})
	}
	if err := validation.CheckStringLength("reason", reason, validation.MaxReasonLength); err != nil {
		return models.StatusView{}, err
	}
	subID, err := id.ParseSubmissionID(strings.TrimSpace(rawID))
	if err != nil {
		return models.StatusView{}, dErrors.New(dErrors.CodeNotFound, "submission not found")
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanKYCReject, tracer.String(tracer.AttrSubmissionID, subID.String()))
	defer func() { span.End(err) }()

	sub, err := s.submissions.FindByID(ctx, subID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.StatusView{}, dErrors.New(dErrors.CodeNotFound, "submission not found")
		}
		return models.StatusView{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission")
	}

	var (
		rejected *models.Submission
		revoked  int
	)
	err = s.locks.Do(sub.UserID.String(), func() error {
		current, err := s.submissions.FindByID(ctx, subID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission")
		}
		if !current.Status.CanTransitionTo(models.StatusRejected) {
			return dErrors.New(dErrors.CodeConflict, "submission in status "+string(current.Status)+" cannot be rejected")
		}
		rejected, err = s.submissions.Transition(ctx, subID, models.Transition{
			FromVersion: current.Version,
			FromStatus:  current.Status,
			To:          models.StatusRejected,
			Reason:      reason,
			At:          requestcontext.Now(ctx),
		})
		if err != nil {
			if errors.Is(err, sentinel.ErrStaleVersion) {
				return dErrors.New(dErrors.CodeConflict, "submission changed, retry")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reject submission")
		}
		revoked, err = s.credentials.RevokeAllByUser(ctx, current.UserID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke credentials")
		}
		return nil
	})
	if err != nil {
		return models.StatusView{}, err
	}

	s.metrics.IncrementRejections()
	s.credMetrics.AddRevoked(revoked)
	s.auditor.Log(ctx, audit.Event{
		Action:   audit.ActionSubmissionRejected,
		UserID:   rejected.UserID,
		Resource: rejected.ID.String(),
		Decision: string(models.StatusRejected),
		Reason:   reason,
	})
	s.logger.InfoContext(ctx, "kyc submission rejected",
		"user_id", rejected.UserID.String(),
		"submission_id", rejected.ID.String(),
		"credentials_revoked", revoked,
		"request_id", requestcontext.RequestID(ctx),
	)
	return models.ViewOf(rejected), nil
}

// SweepStuck moves submissions that have been PROCESSING since before
// cutoff to NEEDS_INFO and returns how many moved.
func (s *Service) SweepStuck(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := s.submissions.ListStale(ctx, models.StatusProcessing, cutoff, sweepBatchSize)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list stuck submissions")
	}

	moved := 0
	for _, sub := range stale {
		err := s.locks.Do(sub.UserID.String(), func() error {
			_, err := s.submissions.Transition(ctx, sub.ID, models.Transition{
				FromVersion: sub.Version,
				FromStatus:  models.StatusProcessing,
				To:          models.StatusNeedsInfo,
				Reason:      models.ReasonServiceUnavailable,
				At:          requestcontext.Now(ctx),
			})
			return err
		})
		if err != nil {
			if errors.Is(err, sentinel.ErrStaleVersion) || errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return moved, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fail stuck submission")
		}
		moved++
		s.metrics.IncrementVerification(metrics.OutcomeSwept)
		s.auditor.Log(ctx, audit.Event{
			Action:   audit.ActionSubmissionNeedsInfo,
			UserID:   sub.UserID,
			Resource: sub.ID.String(),
			Decision: string(models.StatusNeedsInfo),
			Reason:   models.ReasonServiceUnavailable,
		})
		s.logger.WarnContext(ctx, "stuck submission moved to needs info",
			"user_id", sub.UserID.String(),
			"submission_id", sub.ID.String(),
			"version", sub.Version,
		)
	}
	return moved, nil
}

// VerifyAgeProof checks an age proof's shape and public signals. Without a
// configured verifier every proof is rejected.
func (s *Service) VerifyAgeProof(ctx context.Context, proof *mockzk.Proof, publicSignals []string) bool {
	if s.ageVerifier == nil {
		return false
	}
	valid := s.ageVerifier.VerifyAgeProof(proof, publicSignals)
	s.logger.DebugContext(ctx, "age proof checked",
		"valid", valid,
		"request_id", requestcontext.RequestID(ctx),
	)
	return valid
}

func credentialTypes(creds []*credmodels.Credential) string {
	types := make([]string, 0, len(creds))
	for _, c := range creds {
		types = append(types, string(c.Type))
	}
	return strings.Join(types, ",")
}
