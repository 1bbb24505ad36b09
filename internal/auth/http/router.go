package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/novastudy/internal/auth/domain"
	"github.com/aussiebroadwan/novastudy/internal/auth/service"
	"github.com/aussiebroadwan/novastudy/pkg/authsdk"
	"github.com/aussiebroadwan/novastudy/pkg/httpx"
	"github.com/aussiebroadwan/novastudy/pkg/jwtx"
	"github.com/aussiebroadwan/novastudy/pkg/slogx"

	_ "github.com/aussiebroadwan/novastudy/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// PublicPaths bypass the blacklist and authentication stages.
var PublicPaths = []string{
	"/",
	"/auth/register",
	"/auth/login",
	"/auth/refresh-token",
	"/livez",
	"/readyz",
	"/metrics",
	"/swagger/",
}

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Tokens   *service.TokenService
	Users    *service.UserService
	Verifier *jwtx.HS256Verifier

	// Blacklist is consulted for every protected request, usually the cache
	// when one is configured.
	Blacklist httpx.BlacklistChecker
	Rejects   httpx.RejectionRecorder

	Database Pinger
	Cache    Pinger // optional

	// Metrics serves GET /metrics when set.
	Metrics http.Handler

	Cookie       CookieConfig
	StoreTimeout time.Duration
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	deps         Deps
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
}

func NewRouter(deps Deps, buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		deps:         deps,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	pipeline := httpx.Pipeline{
		Public: httpx.NewPublicPaths(PublicPaths...),
		Stages: []httpx.Middleware{
			httpx.BlacklistMiddleware(deps.Blacklist, deps.StoreTimeout, deps.Rejects),
			httpx.AuthnMiddleware(jwtx.NewAccessVerifier(deps.Verifier), deps.Rejects),
		},
	}

	// Logging wraps everything so rejected requests are logged too.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		pipeline.Middleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			NovaStudy Authentication Service API
//	@version		0.1.0
//	@description	JWT authentication and session lifecycle: login, access token refresh and logout with access token revocation.
//	@description
//	@description				Access and refresh tokens are HS256 signed JWTs. The refresh token is also kept in an HttpOnly cookie.
//
//	@contact.name				AussieBroadWAN Team
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.dispatch(), r.middlewares...).ServeHTTP(w, req)
}

// dispatch serves matched routes from the mux and answers unmatched ones
// with the JSON error body instead of the mux's plain text.
func (r *Router) dispatch() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h, pattern := r.Mux.Handler(req)
		if pattern != "" {
			r.Mux.ServeHTTP(w, req)
			return
		}

		// Run the fallback against a scratch writer to learn whether the path
		// exists under another method.
		fallback := &statusRecorder{header: http.Header{}}
		h.ServeHTTP(fallback, req)

		if fallback.status == http.StatusMethodNotAllowed {
			if allow := fallback.header.Get("Allow"); allow != "" {
				w.Header().Set("Allow", allow)
			}
			authsdk.ErrMethodNotAllowed.WriteError(w, req)
			return
		}
		authsdk.ErrResourceNotFound.WriteError(w, req)
	})
}

// statusRecorder keeps the status and headers of a response and drops the
// body.
type statusRecorder struct {
	header http.Header
	status int
}

func (s *statusRecorder) Header() http.Header { return s.header }

func (s *statusRecorder) WriteHeader(status int) {
	if s.status == 0 {
		s.status = status
	}
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return len(b), nil
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Tokens:       r.deps.Tokens,
		Users:        r.deps.Users,
		Cookie:       r.deps.Cookie,
		StoreTimeout: r.deps.StoreTimeout,
	}

	// POST /auth/register - strict rate limit by IP (public signup endpoint)
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/login - strict rate limit by IP + username to slow brute force
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "username"),
		),
	)

	// GET /auth/refresh-token - moderate rate limit by IP (cookie only, no principal)
	r.Mux.Handle("GET /auth/refresh-token",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /auth/my-account",
		httpx.Chain(http.HandlerFunc(h.HandleMyAccount),
			httpx.RequireAuthority(r.deps.Rejects, domain.PermissionViewProfile),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /{$}",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.deps.Database, r.deps.Cache),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if r.deps.Metrics != nil {
		r.Mux.Handle("GET /metrics",
			httpx.Chain(r.deps.Metrics,
				httpx.RateLimitByIP(httpx.LenientLimit),
			),
		)
	}
}
