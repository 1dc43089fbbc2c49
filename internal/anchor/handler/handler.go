package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"spectra/internal/anchor/models"
	"spectra/internal/anchor/service"
	dErrors "spectra/pkg/domain-errors"
	"spectra/pkg/platform/httputil"
	"spectra/pkg/requestcontext"
)

// Service is the anchor directory and credential check as seen by HTTP.
type Service interface {
	List(ctx context.Context) ([]models.Summary, error)
	Get(ctx context.Context, rawID string) (*models.Detail, error)
	Register(ctx context.Context, req *models.RegisterRequest) (*models.Detail, error)
	Verify(ctx context.Context, account, rawAnchorID string) (*service.Result, error)
}

// Handler serves /anchor and POST /kyc/verify.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the routes. Anchor registration sits behind admin,
// which may be nil in tests.
func (h *Handler) Register(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Get("/anchor", h.HandleList)
	r.Get("/anchor/{id}", h.HandleGet)
	r.Post("/kyc/verify", h.HandleVerify)

	r.Group(func(r chi.Router) {
		if admin != nil {
			r.Use(admin)
		}
		r.Post("/anchor", h.HandleRegister)
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	anchors, err := h.service.List(ctx)
	if err != nil {
		h.logFailure(ctx, "failed to list anchors", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, listResponse{Anchors: anchors})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	anchor, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.logFailure(ctx, "failed to get anchor", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, anchorResponse{Anchor: anchor})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	anchor, err := h.service.Register(ctx, req)
	if err != nil {
		h.logFailure(ctx, "failed to register anchor", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusCreated, anchorResponse{Anchor: anchor})
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	result, err := h.service.Verify(ctx, req.StellarAccount, req.AnchorID)
	if err != nil {
		h.logFailure(ctx, "anchor verification failed", err)
		// A missing anchor is a bad request on this route.
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			err = dErrors.New(dErrors.CodeBadRequest, "Anchor not found")
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, result)
}

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
