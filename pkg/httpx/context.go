package httpx

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/aussiebroadwan/novastudy/pkg/jwtx"
)

type ctxKey string

const ctxKeyPrincipal ctxKey = "principal"

// PrincipalKind tells an anonymous caller apart from an authenticated one.
type PrincipalKind int

const (
	Anonymous PrincipalKind = iota
	Authenticated
)

// Principal is the identity attached to a request once the pipeline has
// run. Public routes and requests that never reached authentication see an
// anonymous principal.
type Principal struct {
	Kind        PrincipalKind
	Subject     string
	Authorities []string
	Claims      jwtx.Claims
}

// NewPrincipal builds an authenticated principal from verified claims.
func NewPrincipal(c jwtx.Claims) Principal {
	return Principal{
		Kind:        Authenticated,
		Subject:     c.Subject,
		Authorities: c.Authorities,
		Claims:      c,
	}
}

func (p Principal) IsAuthenticated() bool { return p.Kind == Authenticated }

// HasAuthority reports whether the principal carries name.
func (p Principal) HasAuthority(name string) bool {
	return p.IsAuthenticated() && slices.Contains(p.Authorities, name)
}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFrom returns the request principal, anonymous if none was set.
func PrincipalFrom(ctx context.Context) Principal {
	if p, ok := ctx.Value(ctxKeyPrincipal).(Principal); ok {
		return p
	}
	return Principal{Kind: Anonymous}
}

// BearerToken returns the token from an "Authorization: Bearer <t>" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	return raw, raw != ""
}
