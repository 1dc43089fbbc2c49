package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spectra/pkg/requestcontext"
)

func TestMiddlewareHandler(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		wantIP     string
	}{
		{
			name:       "ignores XFF from untrusted peer",
			remoteAddr: "192.168.1.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1"},
			wantIP:     "192.168.1.1",
		},
		{
			name:       "uses first XFF hop from trusted proxy",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.2"},
			wantIP:     "203.0.113.1",
		},
		{
			name:       "uses X-Real-IP from trusted proxy",
			trusted:    []string{"10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			wantIP:     "198.51.100.7",
		},
		{
			name:       "rejects malformed XFF",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			wantIP:     "10.0.0.1",
		},
		{
			name:       "ipv6 peer",
			remoteAddr: "[::1]:8080",
			wantIP:     "::1",
		},
		{
			name:   "missing remote addr",
			wantIP: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefixes, err := ParseTrustedProxies(tt.trusted)
			require.NoError(t, err)

			var gotIP, gotUA string
			handler := NewMiddleware(prefixes).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotIP = requestcontext.ClientIP(r.Context())
				gotUA = requestcontext.UserAgent(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/anchor", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Set("User-Agent", "spectra-frontend/1.0")
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.wantIP, gotIP)
			assert.Equal(t, "spectra-frontend/1.0", gotUA)
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 127.0.0.1 ", ""})
	require.NoError(t, err)
	assert.Len(t, prefixes, 2)

	_, err = ParseTrustedProxies([]string{"nope"})
	assert.Error(t, err)
}
