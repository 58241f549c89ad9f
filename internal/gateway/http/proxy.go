package http

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/galleria-app/galleria/pkg/httpx"
	"github.com/galleria-app/galleria/pkg/slogx"
)

// Upstream is a reverse proxy to one catalog service. Request and
// response bodies pass through untouched, and the Authorization header
// travels with the request so the upstream can verify the same token.
type Upstream struct {
	Name  string
	proxy *httputil.ReverseProxy
}

// NewUpstream builds a proxy for the service at rawURL.
func NewUpstream(name, rawURL string) (*Upstream, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		slogx.FromContext(r.Context()).Error("upstream request failed",
			"upstream", name,
			"path", r.URL.Path,
			"err", err,
		)
		httpx.WriteProblem(w, r, http.StatusBadGateway, name+" service unavailable")
	}

	return &Upstream{Name: name, proxy: proxy}, nil
}

func (u *Upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.proxy.ServeHTTP(w, r)
}
