package http

import (
	"errors"
	"net/http"

	"github.com/galleria-app/galleria/internal/auth/service"
	"github.com/galleria-app/galleria/internal/auth/session"
	"github.com/galleria-app/galleria/pkg/httpx"
	"github.com/galleria-app/galleria/pkg/slogx"
)

// LoginHandler serves the interactive login page.
type LoginHandler struct {
	UserService   *service.UserService
	Sessions      *session.Store
	FrontendURL   string
	SecureCookies bool
}

// HandleGet renders the login form. Rendering always ensures a session
// so the form has a CSRF token to carry.
func (h *LoginHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Sessions.Ensure(w, r, h.SecureCookies)
	if err != nil {
		httpx.WriteProblem(w, r, http.StatusInternalServerError, "session failure")
		return
	}

	data := loginPageData{
		CSRFToken:  sess.CSRFToken,
		Registered: r.URL.Query().Has("registered"),
	}
	if r.URL.Query().Has("error") {
		data.Error = "Invalid username or password."
	}
	renderPage(w, http.StatusOK, "login.html", data)
}

// HandlePost authenticates the submitted credentials. On success the
// session is upgraded in place and the browser resumes the pending
// authorization request if one was parked, otherwise it goes back to
// the frontend.
func (h *LoginHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sess, ok := h.Sessions.FromRequest(r)
	if !ok {
		// CSRF guard already requires a session, so this only happens if
		// it expired mid-flight. Start over.
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		httpx.WriteProblem(w, r, http.StatusBadRequest, "invalid form body")
		return
	}

	user, err := h.UserService.Authenticate(ctx, r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			http.Redirect(w, r, "/login?error", http.StatusFound)
			return
		}
		log.Error("login failed", "err", err)
		httpx.WriteProblem(w, r, http.StatusInternalServerError, "login failure")
		return
	}

	// Login rotates the session id; hand the browser the new cookies.
	fresh, ok := h.Sessions.Login(sess.ID, user.ID, user.Username)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	session.WriteCookies(w, fresh, h.SecureCookies)

	if pending, ok := fresh.ConsumePending(); ok {
		http.Redirect(w, r, "/oauth2/authorize?"+pending.RawQuery, http.StatusFound)
		return
	}

	http.Redirect(w, r, h.FrontendURL, http.StatusFound)
}
