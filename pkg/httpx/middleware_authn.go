package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/novastudy/pkg/jwtx"
	"github.com/aussiebroadwan/novastudy/pkg/slogx"
)

func AuthnMiddleware(v jwtx.Verifier, rec RejectionRecorder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				recordRejection(rec, r, ReasonMissingToken)
				writeBearerError(w, "Missing or invalid access token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				recordRejection(rec, r, ReasonInvalidToken)
				writeBearerError(w, "Invalid or expired access token")
				return
			}

			// Inject into context for downstream handlers.
			ctx = WithPrincipal(ctx, NewPrincipal(claims))
			ctx = slogx.WithAttrs(ctx, "sub", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750 challenge header plus the minimal JSON body.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteMinimalError(w, http.StatusUnauthorized, CodeInvalidToken, desc)
}
