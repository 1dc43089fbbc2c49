package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spectra/internal/ratelimit/models"
	"spectra/internal/ratelimit/store"
	"spectra/pkg/requestcontext"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, models.Policy) (*models.Result, error) {
	return nil, errors.New("redis down")
}

func newHandler(limiter Limiter, policies map[models.EndpointClass]models.Policy) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return New(limiter, policies, logger).Handler(next)
}

func send(h http.Handler, method, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "test"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	limiter := store.NewInMemory(store.WithClock(func() time.Time { return now }))
	h := newHandler(limiter, map[models.EndpointClass]models.Policy{
		models.ClassSubmit: {Limit: 2, Window: time.Minute},
	})

	assert.Equal(t, http.StatusOK, send(h, http.MethodPost, "/kyc/submit", "10.0.0.1").Code)
	second := send(h, http.MethodPost, "/kyc/submit", "10.0.0.1")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))

	blocked := send(h, http.MethodPost, "/kyc/submit", "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))
	assert.Contains(t, blocked.Body.String(), "rate_limited")

	assert.Equal(t, http.StatusOK, send(h, http.MethodPost, "/kyc/submit", "10.0.0.2").Code)
}

func TestRateLimitSkipsClassesWithoutPolicy(t *testing.T) {
	h := newHandler(store.NewInMemory(), map[models.EndpointClass]models.Policy{
		models.ClassSubmit: {Limit: 1, Window: time.Minute},
	})
	for range 5 {
		assert.Equal(t, http.StatusOK, send(h, http.MethodGet, "/anchor", "10.0.0.1").Code)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	h := newHandler(failingLimiter{}, map[models.EndpointClass]models.Policy{
		models.ClassRead: {Limit: 1, Window: time.Minute},
	})
	assert.Equal(t, http.StatusOK, send(h, http.MethodGet, "/anchor", "10.0.0.1").Code)
}

func TestClassifyKYC(t *testing.T) {
	tests := []struct {
		method, path string
		expected     models.EndpointClass
	}{
		{http.MethodPost, "/kyc/submit", models.ClassSubmit},
		{http.MethodPost, "/kyc/verify", models.ClassVerify},
		{http.MethodPost, "/kyc/proofs/age/verify", models.ClassVerify},
		{http.MethodGet, "/kyc/status/GABC", models.ClassRead},
		{http.MethodPost, "/anchor", models.ClassRead},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		assert.Equal(t, tt.expected, ClassifyKYC(req), tt.method+" "+tt.path)
	}
}
