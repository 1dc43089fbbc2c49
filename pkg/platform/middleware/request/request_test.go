package request

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"spectra/pkg/requestcontext"
)

func TestRequestID(t *testing.T) {
	capture := func(id *string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*id = requestcontext.RequestID(r.Context())
		})
	}

	t.Run("generates a uuid when header missing", func(t *testing.T) {
		var got string
		w := httptest.NewRecorder()
		RequestID(capture(&got)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/kyc/status/GABC", nil))

		assert.Len(t, got, 36)
		assert.Equal(t, got, w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps a well formed client id", func(t *testing.T) {
		var got string
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "trace.span_1234")
		w := httptest.NewRecorder()
		RequestID(capture(&got)).ServeHTTP(w, req)

		assert.Equal(t, "trace.span_1234", got)
	})

	for name, id := range map[string]string{
		"too long":  strings.Repeat("a", MaxRequestIDLength+1),
		"newline":   "valid\ninjected",
		"spaces":    "request id",
		"quotes":    `request"id`,
		"null byte": "request\x00id",
	} {
		t.Run("replaces "+name, func(t *testing.T) {
			var got string
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", id)
			RequestID(capture(&got)).ServeHTTP(httptest.NewRecorder(), req)

			assert.NotEqual(t, id, got)
			assert.Len(t, got, 36)
		})
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("issuer exploded")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/kyc/submit", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "issuer exploded")
	assert.Contains(t, buf.String(), "issuer exploded")
}

func TestLoggerSkipsHealthyProbes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	Logger(logger)(ok).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String())

	Logger(logger)(ok).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/anchor", nil))
	assert.Contains(t, buf.String(), `"path":"/anchor"`)
}

func TestLoggerRecordsClientMetadata(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/kyc/status/GABC", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), "203.0.113.45", "spectra-wallet/1.2"))
	Logger(logger)(ok).ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"user_agent":"spectra-wallet/1.2"`)
	assert.NotContains(t, buf.String(), "203.0.113.45")
}

func TestContentTypeJSON(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"json post", http.MethodPost, "application/json", http.StatusNoContent},
		{"json with charset", http.MethodPost, "application/json; charset=utf-8", http.StatusNoContent},
		{"missing header", http.MethodPost, "", http.StatusNoContent},
		{"form post", http.MethodPost, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"get ignores header", http.MethodGet, "text/plain", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/kyc/verify", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			ContentTypeJSON(next).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestLatencyMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	handler := LatencyMiddleware(m, func(*http.Request) string { return "/anchor/{id}" })(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) }),
	)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/anchor/missing", nil))

	assert.Equal(t, 1, testutil.CollectAndCount(m.EndpointLatency))
}
