package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/novastudy/pkg/slogx"
)

// BlacklistChecker answers whether an access token was revoked.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// BlacklistMiddleware rejects requests whose bearer token is on the
// blacklist. A request without a bearer token passes through untouched so
// authentication can reject it with its own message. A failing lookup is a
// 500, never a pass.
func BlacklistMiddleware(bl BlacklistChecker, timeout time.Duration, rec RejectionRecorder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			revoked, err := bl.IsBlacklisted(ctx, raw)
			if err != nil {
				slogx.FromContext(r.Context()).Error("blacklist lookup failed", "err", err)
				recordRejection(rec, r, ReasonStoreError)
				WriteMinimalError(w, http.StatusInternalServerError, CodeInternal, "Unexpected error occurred")
				return
			}
			if revoked {
				recordRejection(rec, r, ReasonRevoked)
				WriteMinimalError(w, http.StatusUnauthorized, CodeTokenRevoked, "Access token has been revoked")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
