// Package requesttime pins a single "now" per request so every timestamp
// written while serving it agrees.
package requesttime

import (
	"net/http"
	"time"

	"spectra/pkg/requestcontext"
)

// Middleware stores the request start time in the context. Read it back
// with requestcontext.Now.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock is Middleware with an injectable clock.
func WithClock(now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), now().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
