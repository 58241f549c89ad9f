package session

import (
	"crypto/subtle"
	"net/http"

	"github.com/galleria-app/galleria/pkg/httpx"
	"github.com/galleria-app/galleria/pkg/slogx"
)

// CsrfGuard rejects state-changing requests whose X-XSRF-TOKEN header
// does not match the session's CSRF token. Safe methods pass through
// untouched. This guard belongs only on the cookie-session surface;
// bearer-token endpoints like /oauth2/token carry no ambient credential
// a cross-site form could ride on, so they are left alone.
func CsrfGuard(store *Store) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				next.ServeHTTP(w, r)
				return
			}

			s, ok := store.FromRequest(r)
			if !ok {
				httpx.WriteProblem(w, r, http.StatusForbidden, "missing session")
				return
			}

			// SPA requests echo the token in a header; plain HTML form
			// posts carry it in a hidden _csrf field instead.
			token := r.Header.Get(CSRFHeaderName)
			if token == "" {
				token = r.PostFormValue(CSRFFormField)
			}
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.CSRFToken)) != 1 {
				slogx.FromContext(r.Context()).Warn("csrf token mismatch", "path", r.URL.Path)
				httpx.WriteProblem(w, r, http.StatusForbidden, "invalid CSRF token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
