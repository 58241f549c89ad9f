package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/galleria-app/galleria/internal/auth/service"
	"github.com/galleria-app/galleria/internal/auth/session"
	"github.com/galleria-app/galleria/pkg/authsdk"
	"github.com/galleria-app/galleria/pkg/httpx"
	"github.com/galleria-app/galleria/pkg/slogx"
)

// AuthorizeHandler serves GET /oauth2/authorize, the entry point of the
// authorization code flow.
type AuthorizeHandler struct {
	AuthorizeService *service.AuthorizeService
	Sessions         *session.Store
	SecureCookies    bool
}

// HandleGet validates the authorization request and either issues a
// code (session already logged in) or parks the request and sends the
// browser to the login page. A request with a bad client or redirect
// URI fails with a 400 on the spot; redirecting errors to an
// unvalidated URI would turn the endpoint into an open redirector.
func (h *AuthorizeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sess, err := h.Sessions.Ensure(w, r, h.SecureCookies)
	if err != nil {
		log.Error("failed to create session", "err", err)
		httpx.WriteProblem(w, r, http.StatusInternalServerError, "session failure")
		return
	}

	q := r.URL.Query()
	req := service.AuthorizeRequest{
		ResponseType:        q.Get("response_type"),
		ClientID:            q.Get("client_id"),
		RedirectURI:         q.Get("redirect_uri"),
		Scope:               httpx.ParseSpaceDelimitedFields(q.Get("scope")),
		State:               q.Get("state"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: q.Get("code_challenge_method"),
	}

	if _, _, err := h.AuthorizeService.Validate(req); err != nil {
		h.writeValidationFailure(w, r, req, err)
		return
	}

	if !sess.Authenticated() {
		sess.SavePending(r.URL.RawQuery)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	userID, _ := sess.User()
	resp, err := h.AuthorizeService.IssueCode(ctx, userID, req)
	if err != nil {
		log.Error("failed to issue authorization code", "err", err)
		httpx.WriteProblem(w, r, http.StatusInternalServerError, "authorization failure")
		return
	}

	redirect, _ := url.Parse(resp.RedirectURI)
	values := redirect.Query()
	values.Set("code", resp.Code)
	if resp.State != "" {
		values.Set("state", resp.State)
	}
	redirect.RawQuery = values.Encode()

	http.Redirect(w, r, redirect.String(), http.StatusFound)
}

// writeValidationFailure reports a bad authorization request. When the
// client and redirect URI themselves check out, the error goes back to
// the client on the redirect per RFC 6749 section 4.1.2.1; otherwise it
// stops here as a 400.
func (h *AuthorizeHandler) writeValidationFailure(w http.ResponseWriter, r *http.Request, req service.AuthorizeRequest, err error) {
	client, clientErr := h.AuthorizeService.Clients.Get(req.ClientID)
	trustedRedirect := clientErr == nil && client.AllowsRedirectURI(req.RedirectURI)

	if !trustedRedirect {
		httpx.WriteProblem(w, r, http.StatusBadRequest, "invalid client_id or redirect_uri")
		return
	}

	code := authsdk.ErrorCodeInvalidRequest
	switch {
	case errors.Is(err, service.ErrInvalidScope):
		code = authsdk.ErrorCodeInvalidScope
	case errors.Is(err, service.ErrInvalidRequest) && req.ResponseType != "code":
		code = authsdk.ErrorCodeUnsupportedResponseType
	}

	redirect, _ := url.Parse(req.RedirectURI)
	values := redirect.Query()
	values.Set("error", code)
	if req.State != "" {
		values.Set("state", req.State)
	}
	redirect.RawQuery = values.Encode()

	http.Redirect(w, r, redirect.String(), http.StatusFound)
}
