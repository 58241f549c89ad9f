package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/galleria-app/galleria/pkg/httpx"
	"github.com/galleria-app/galleria/pkg/jwtx"
	"github.com/galleria-app/galleria/pkg/slogx"
)

// Router is the gateway's HTTP surface: the session descriptor plus the
// reverse proxies in front of the catalog services. The gateway holds no
// state of its own; it verifies bearer tokens locally and forwards them
// unchanged so upstreams can re-verify.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	// Ready reports whether the verifier has keys loaded; used by the
	// readiness endpoint.
	Ready func() bool

	// Upstreams to proxy to. Nil entries disable their routes, which
	// keeps local development of a subset of services possible.
	Artist   *Upstream
	Museum   *Upstream
	Painting *Upstream
	Geo      *Upstream
	Userdata *Upstream
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerCatalog()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSession() {
	// The session descriptor must answer 200 for anonymous callers, so
	// it sits behind the optional authn middleware: a bad token reads
	// the same as no token.
	r.Mux.Handle("GET /api/session",
		httpx.Chain(SessionHandler(),
			httpx.OptionalAuthnMiddleware(r.verifier),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

// registerCatalog wires the catalog proxies. Reads are public, writes
// require a bearer token; the userdata service is personal and needs a
// token for everything.
func (r *Router) registerCatalog() {
	r.proxyPrefix("/api/artist", r.Artist, true)
	r.proxyPrefix("/api/museum", r.Museum, true)
	r.proxyPrefix("/api/painting", r.Painting, true)
	r.proxyPrefix("/api/country", r.Geo, true)
	r.proxyPrefix("/api/user", r.Userdata, false)
}

// proxyPrefix registers exact and subtree patterns for one upstream.
// With anonymousReads, GET passes without a token; any other method on
// the prefix requires one. Method-specific patterns win over the
// method-less fallback, so the two registrations compose.
func (r *Router) proxyPrefix(prefix string, up *Upstream, anonymousReads bool) {
	if up == nil {
		return
	}

	authed := httpx.Chain(up,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByIP(httpx.ModerateLimit),
	)
	r.Mux.Handle(prefix, authed)
	r.Mux.Handle(prefix+"/", authed)

	if anonymousReads {
		public := httpx.Chain(up, httpx.RateLimitByIP(httpx.PublicLimit))
		r.Mux.Handle("GET "+prefix, public)
		r.Mux.Handle("GET "+prefix+"/", public)
	}
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /healthz",
		httpx.Chain(HealthzHandler(r.Ready),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
