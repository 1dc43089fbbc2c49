package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	credmodels "spectra/internal/credential/models"
	"spectra/internal/kyc/models"
	"spectra/internal/zkproof/mockzk"
	dErrors "spectra/pkg/domain-errors"
	"spectra/pkg/platform/httputil"
	"spectra/pkg/requestcontext"
)

// Service is the submission lifecycle as seen by HTTP.
type Service interface {
	Submit(ctx context.Context, req *models.SubmitRequest) (*models.SubmitResult, error)
	Status(ctx context.Context, account string) (models.StatusView, error)
	Credentials(ctx context.Context, account string) ([]*credmodels.Credential, error)
	Revoke(ctx context.Context, credentialID string) error
	Reject(ctx context.Context, submissionID, reason string) (models.StatusView, error)
	VerifyAgeProof(ctx context.Context, proof *mockzk.Proof, publicSignals []string) bool
}

// Handler serves the /kyc endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the routes. Revoke and reject sit behind admin, which
// may be nil in tests.
func (h *Handler) Register(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Post("/kyc/submit", h.HandleSubmit)
	r.Get("/kyc/status/{stellarAccount}", h.HandleStatus)
	r.Get("/kyc/credentials/{stellarAccount}", h.HandleCredentials)
	r.Post("/kyc/proofs/age/verify", h.HandleVerifyAgeProof)

	r.Group(func(r chi.Router) {
		if admin != nil {
			r.Use(admin)
		}
		r.Post("/kyc/revoke/{credentialId}", h.HandleRevoke)
		r.Post("/kyc/reject/{submissionId}", h.HandleReject)
	})
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[submitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Submit(ctx, req.toModel())
	if err != nil {
		h.logFailure(ctx, "kyc submission failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.Status(ctx, chi.URLParam(r, "stellarAccount"))
	if err != nil {
		h.logFailure(ctx, "failed to get kyc status", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

func (h *Handler) HandleCredentials(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	creds, err := h.service.Credentials(ctx, chi.URLParam(r, "stellarAccount"))
	if err != nil {
		h.logFailure(ctx, "failed to get credentials", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, credentialsResponse{Credentials: creds})
}

func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	credentialID := chi.URLParam(r, "credentialId")
	if credentialID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Credential ID is required"))
		return
	}
	if err := h.service.Revoke(ctx, credentialID); err != nil {
		h.logFailure(ctx, "failed to revoke credential", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Credential revoked successfully")
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[rejectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	view, err := h.service.Reject(ctx, chi.URLParam(r, "submissionId"), req.Reason)
	if err != nil {
		h.logFailure(ctx, "failed to reject submission", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, view)
}

func (h *Handler) HandleVerifyAgeProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeJSON[ageProofRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	valid := h.service.VerifyAgeProof(ctx, req.Proof, req.PublicSignals)
	httputil.WriteData(w, http.StatusOK, ageProofResponse{Valid: valid})
}

// logFailure logs caller mistakes at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	attrs := []any{
		"error", err,
		"code", string(dErrors.CodeOf(err)),
		"request_id", requestcontext.RequestID(ctx),
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeNotFound, dErrors.CodeConflict:
		h.logger.WarnContext(ctx, msg, attrs...)
	default:
		h.logger.ErrorContext(ctx, msg, attrs...)
	}
}
