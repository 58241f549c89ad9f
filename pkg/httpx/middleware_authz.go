package httpx

import (
	"net/http"
	"strings"
)

// RequireAnyAuthority the caller must hold at least one of the listed
// authorities.
func RequireAnyAuthority(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, a := range required {
		want[a] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, a := range authoritiesFromCtx(r.Context()) {
				if _, ok := want[a]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeAuthorityError(w, r, required...)
		})
	}
}

// RequireAllAuthorities the caller must hold every listed authority.
func RequireAllAuthorities(required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have := make(map[string]struct{})
			for _, a := range authoritiesFromCtx(r.Context()) {
				have[a] = struct{}{}
			}

			for _, req := range required {
				if _, ok := have[req]; !ok {
					writeAuthorityError(w, r, required...)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthorityError(w http.ResponseWriter, r *http.Request, required ...string) {
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
	WriteProblem(w, r, http.StatusForbidden, "insufficient authority")
}
