package httpx

import (
	"context"
	"net/http"
	"strings"
)

// Reasons reported to a RejectionRecorder.
const (
	ReasonMissingToken = "missing_token"
	ReasonInvalidToken = "invalid_token"
	ReasonRevoked      = "revoked"
	ReasonForbidden    = "forbidden"
	ReasonStoreError   = "store_error"
)

// RejectionRecorder is told every time a stage turns a request away.
type RejectionRecorder interface {
	RecordRejection(ctx context.Context, reason string)
}

func recordRejection(rec RejectionRecorder, r *http.Request, reason string) {
	if rec != nil {
		rec.RecordRejection(r.Context(), reason)
	}
}

// PublicPaths is the immutable set of routes that bypass authentication.
// Entries ending in "/" (other than "/" itself) match as prefixes.
type PublicPaths struct {
	exact    map[string]struct{}
	prefixes []string
}

// NewPublicPaths builds the set once at startup.
func NewPublicPaths(paths ...string) PublicPaths {
	p := PublicPaths{exact: make(map[string]struct{}, len(paths))}
	for _, path := range paths {
		if len(path) > 1 && strings.HasSuffix(path, "/") {
			p.prefixes = append(p.prefixes, path)
			continue
		}
		p.exact[path] = struct{}{}
	}
	return p
}

// Match reports whether path is public.
func (p PublicPaths) Match(path string) bool {
	if _, ok := p.exact[path]; ok {
		return true
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Pipeline runs a public-path bypass and then each stage in order. Any stage
// may answer the request itself, in which case later stages and the handler
// never run.
type Pipeline struct {
	Public PublicPaths
	Stages []Middleware
}

// Wrap returns next guarded by the pipeline.
func (p Pipeline) Wrap(next http.Handler) http.Handler {
	guarded := Chain(next, p.Stages...)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p.Public.Match(r.URL.Path) {
			ctx := WithPrincipal(r.Context(), Principal{Kind: Anonymous})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		guarded.ServeHTTP(w, r)
	})
}

// Middleware exposes Wrap so the pipeline can sit in a Chain.
func (p Pipeline) Middleware() Middleware {
	return p.Wrap
}
