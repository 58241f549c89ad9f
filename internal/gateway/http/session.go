package http

import (
	"net/http"

	"github.com/galleria-app/galleria/pkg/authsdk"
	"github.com/galleria-app/galleria/pkg/httpx"
)

// SessionHandler serves GET /api/session: the frontend's view of its
// own login state. It always answers 200. With a valid bearer token the
// body carries the username and token lifetime; otherwise every field
// is null, which the frontend reads as "logged out". This is the one
// endpoint that swallows verification failure instead of answering 401,
// so the frontend can render an anonymous page without special-casing
// an error response.
func SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var desc authsdk.SessionDescriptor

		if claims, ok := httpx.ClaimsFromContext(r.Context()); ok {
			username := claims.Username
			desc.Username = &username
			if claims.IssuedAt != nil {
				iat := claims.IssuedAt.Time
				desc.IssuedAt = &iat
			}
			if claims.ExpiresAt != nil {
				exp := claims.ExpiresAt.Time
				desc.ExpiresAt = &exp
			}
		}

		httpx.WriteJSON(w, http.StatusOK, desc)
	}
}
