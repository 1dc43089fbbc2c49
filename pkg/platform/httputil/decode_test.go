package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "spectra/pkg/domain-errors"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type proofPayload struct {
	Threshold int `json:"threshold"`
}

type accountPayload struct {
	Account string `json:"stellarAccount"`
	trimmed bool
	upper   bool
}

func (p *accountPayload) Sanitize()  { p.Account = strings.TrimSpace(p.Account); p.trimmed = true }
func (p *accountPayload) Normalize() { p.Account = strings.ToUpper(p.Account); p.upper = true }
func (p *accountPayload) Validate() error {
	if p.Account == "" {
		return errors.New("stellarAccount is required")
	}
	return nil
}

type anchorPayload struct {
	AnchorID string `json:"anchorId"`
}

func (p *anchorPayload) Validate() error {
	if p.AnchorID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "anchorId is required")
	}
	return nil
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func envelopeOf(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestDecodeJSON(t *testing.T) {
	w := httptest.NewRecorder()
	got, ok := DecodeJSON[proofPayload](w, post(`{"threshold":18}`), discard, t.Context(), "req-1")
	require.True(t, ok)
	assert.Equal(t, 18, got.Threshold)

	for name, body := range map[string]string{"malformed": `{threshold:`, "empty": ``} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			got, ok := DecodeJSON[proofPayload](w, post(body), discard, t.Context(), "req-1")
			assert.False(t, ok)
			assert.Nil(t, got)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := envelopeOf(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, "bad_request", env.Code)
			assert.Equal(t, "invalid request body", env.Error)
		})
	}
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("runs every preparation step in order", func(t *testing.T) {
		w := httptest.NewRecorder()
		got, ok := DecodeAndPrepare[accountPayload](w, post(`{"stellarAccount":"  gabc  "}`), discard, t.Context(), "req-1")
		require.True(t, ok)
		assert.Equal(t, "GABC", got.Account)
		assert.True(t, got.trimmed)
		assert.True(t, got.upper)
	})

	t.Run("plain errors become validation_failed", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[accountPayload](w, post(`{"stellarAccount":"   "}`), discard, t.Context(), "req-1")
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := envelopeOf(t, w)
		assert.Equal(t, "validation_failed", env.Code)
		assert.Equal(t, "stellarAccount is required", env.Error)
	})

	t.Run("domain errors keep their code", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[anchorPayload](w, post(`{}`), discard, t.Context(), "req-1")
		require.False(t, ok)
		env := envelopeOf(t, w)
		assert.Equal(t, "bad_request", env.Code)
		assert.Equal(t, "anchorId is required", env.Error)
	})
}

func TestPrepareRequestIgnoresPlainStructs(t *testing.T) {
	assert.NoError(t, PrepareRequest(&proofPayload{}))
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		status     int
		code       string
		hiddenText string
	}{
		{"internal cause hidden", dErrors.Wrap(errors.New("pq: relation does not exist"), dErrors.CodeInternal, "failed to save submission"), http.StatusInternalServerError, "internal_error", "pq:"},
		{"crypto failure hidden", dErrors.New(dErrors.CodeCrypto, "authentication tag mismatch"), http.StatusInternalServerError, "crypto_error", "authentication tag"},
		{"plain error is internal", errors.New("boom"), http.StatusInternalServerError, "internal_error", "boom"},
		{"not found passes through", dErrors.New(dErrors.CodeNotFound, "Anchor not found"), http.StatusNotFound, "not_found", ""},
		{"conflict", dErrors.New(dErrors.CodeConflict, "Anchor domain already registered"), http.StatusConflict, "conflict", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)
			assert.Equal(t, tt.status, w.Code)
			env := envelopeOf(t, w)
			assert.Equal(t, tt.code, env.Code)
			if tt.hiddenText != "" {
				assert.Equal(t, genericErrorMessage, env.Error)
				assert.NotContains(t, w.Body.String(), tt.hiddenText)
			}
		})
	}

	t.Run("validation details are exposed", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.NewValidation("validation failed", []string{"firstName is required"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{"firstName is required"}, envelopeOf(t, w).Details)
	})
}

func TestWriteData(t *testing.T) {
	w := httptest.NewRecorder()
	WriteData(w, http.StatusOK, map[string]any{"verified": true})

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, map[string]any{"verified": true}, resp["data"])
	assert.NotContains(t, resp, "error")
}
