// Package middleware enforces per-client request limits on the public API.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"spectra/internal/ratelimit/models"
	"spectra/pkg/platform/httputil"
	"spectra/pkg/platform/privacy"
	"spectra/pkg/requestcontext"
)

type Limiter interface {
	Allow(ctx context.Context, key string, policy models.Policy) (*models.Result, error)
}

// Classifier picks the limit class of a request.
type Classifier func(r *http.Request) models.EndpointClass

type Middleware struct {
	limiter  Limiter
	policies map[models.EndpointClass]models.Policy
	classify Classifier
	logger   *slog.Logger
}

// New builds the middleware. Classes without a policy are not limited.
func New(limiter Limiter, policies map[models.EndpointClass]models.Policy, logger *slog.Logger) *Middleware {
	return &Middleware{
		limiter:  limiter,
		policies: policies,
		classify: ClassifyKYC,
		logger:   logger,
	}
}

// ClassifyKYC limits submissions hardest and verifications harder than reads.
func ClassifyKYC(r *http.Request) models.EndpointClass {
	if r.Method != http.MethodPost {
		return models.ClassRead
	}
	switch {
	case r.URL.Path == "/kyc/submit":
		return models.ClassSubmit
	case r.URL.Path == "/kyc/verify", strings.HasPrefix(r.URL.Path, "/kyc/proofs/"):
		return models.ClassVerify
	default:
		return models.ClassRead
	}
}

// Handler limits by client IP. Limiter failures let the request through.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		class := m.classify(r)
		policy, ok := m.policies[class]
		if !ok || policy.Limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ip := requestcontext.ClientIP(ctx)
		result, err := m.limiter.Allow(ctx, string(class)+":"+ip, policy)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to check rate limit",
				"error", err,
				"ip_prefix", privacy.AnonymizeIP(ip),
				"request_id", requestcontext.RequestID(ctx),
			)
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)
		if !result.Allowed {
			m.logger.WarnContext(ctx, "rate limit exceeded",
				"class", string(class),
				"ip_prefix", privacy.AnonymizeIP(ip),
				"request_id", requestcontext.RequestID(ctx),
			)
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.Envelope{
				Error: "Too many requests, please try again later",
				Code:  "rate_limited",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
