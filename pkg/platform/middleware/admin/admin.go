package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "spectra/pkg/domain-errors"
	"spectra/pkg/platform/httputil"
	"spectra/pkg/requestcontext"
)

const (
	TokenHeader = "X-Admin-Token"
	ActorHeader = "X-Admin-Actor-ID"
)

// RequireAdminToken guards operator routes (revoke, reject, anchor
// registration). An empty expected token disables the routes entirely.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := r.Header.Get(TokenHeader)
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			actor := r.Header.Get(ActorHeader)
			if actor == "" {
				actor = "admin"
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithAdminActor(ctx, actor)))
		})
	}
}
