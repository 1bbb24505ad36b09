package httpx

import (
	"net/http"
	"strings"
)

// RequireAuthority the caller must carry every authority listed.
func RequireAuthority(rec RejectionRecorder, required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFrom(r.Context())

			for _, name := range required {
				if !p.HasAuthority(name) {
					recordRejection(rec, r, ReasonForbidden)
					w.Header().Set("WWW-Authenticate",
						`Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
					WriteError(w, r, http.StatusForbidden, CodeForbidden, "Access denied")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
