package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/galleria-app/galleria/internal/auth/service"
	"github.com/galleria-app/galleria/internal/auth/session"
	"github.com/galleria-app/galleria/internal/auth/store"
	"github.com/galleria-app/galleria/pkg/httpx"
	"github.com/galleria-app/galleria/pkg/jwtx"
	"github.com/galleria-app/galleria/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	issuer       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	Sessions *session.Store

	AuthorizeService *service.AuthorizeService
	TokenService     *service.TokenService
	UserService      *service.UserService

	// FrontendURL is where login lands when there is no pending
	// authorization request to resume.
	FrontendURL string

	// SecureCookies marks session cookies Secure; off for local dev.
	SecureCookies bool
}

func NewRouter(
	keys *jwtx.KeySet,
	issuer, buildVersion string,
	st store.Store,
	sessions *session.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		Sessions:     sessions,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth2()
	r.registerLogin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOAuth2() {
	authorizeHandler := &AuthorizeHandler{
		AuthorizeService: r.AuthorizeService,
		Sessions:         r.Sessions,
		SecureCookies:    r.SecureCookies,
	}

	// GET /oauth2/authorize is a safe method on the session surface,
	// so it sits outside the CSRF guard.
	r.Mux.Handle("GET /oauth2/authorize",
		httpx.Chain(http.HandlerFunc(authorizeHandler.HandleGet),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /token authenticates with the code + PKCE verifier, not a
	// cookie, so the CSRF guard has nothing to protect there.
	tokenHandler := &TokenHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /oauth2/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerLogin() {
	loginHandler := &LoginHandler{
		UserService:   r.UserService,
		Sessions:      r.Sessions,
		FrontendURL:   r.FrontendURL,
		SecureCookies: r.SecureCookies,
	}
	registerHandler := &RegisterHandler{
		UserService:   r.UserService,
		Sessions:      r.Sessions,
		SecureCookies: r.SecureCookies,
	}
	logoutHandler := &LogoutHandler{
		Sessions:    r.Sessions,
		FrontendURL: r.FrontendURL,
	}

	csrf := session.CsrfGuard(r.Sessions)

	r.Mux.Handle("GET /login",
		httpx.Chain(http.HandlerFunc(loginHandler.HandleGet),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	// Brute force protection: limited by IP + submitted username.
	r.Mux.Handle("POST /login",
		httpx.Chain(http.HandlerFunc(loginHandler.HandlePost),
			csrf,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)

	r.Mux.Handle("GET /register",
		httpx.Chain(http.HandlerFunc(registerHandler.HandleGet),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /register",
		httpx.Chain(http.HandlerFunc(registerHandler.HandlePost),
			csrf,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /logout",
		httpx.Chain(logoutHandler,
			csrf,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /healthz",
		httpx.Chain(HealthzHandler(r.store, r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
