package http

import (
	"net/http"

	"github.com/galleria-app/galleria/internal/auth/session"
)

// LogoutHandler serves POST /logout: the session is destroyed and its
// cookies cleared. Already-issued access tokens stay valid until they
// expire; logout only ends the browser session.
type LogoutHandler struct {
	Sessions    *session.Store
	FrontendURL string
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if sess, ok := h.Sessions.FromRequest(r); ok {
		h.Sessions.Delete(sess.ID)
	}
	session.ClearCookies(w)

	http.Redirect(w, r, h.FrontendURL, http.StatusFound)
}
