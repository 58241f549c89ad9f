package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/galleria-app/galleria/internal/auth/service"
	"github.com/galleria-app/galleria/pkg/authsdk"
	"github.com/galleria-app/galleria/pkg/httpx"
	"github.com/galleria-app/galleria/pkg/slogx"
)

// TokenHandler serves POST /oauth2/token. Accepts
// application/x-www-form-urlencoded per RFC 6749.
type TokenHandler struct {
	TokenService *service.TokenService
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. Ensure the right content-type
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}

	// 2. Parse the form body
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	// 3. Only the authorization_code grant exists here. No refresh
	// tokens: expired access tokens mean a fresh trip through the
	// authorization flow.
	if grantType := r.Form.Get("grant_type"); grantType != "authorization_code" {
		authsdk.ErrUnsupportedGrantType.WriteError(w)
		return
	}

	ctx := r.Context()
	log := slogx.FromContext(ctx)

	code := strings.TrimSpace(r.Form.Get("code"))
	redirectURI := strings.TrimSpace(r.Form.Get("redirect_uri"))
	clientID := strings.TrimSpace(r.Form.Get("client_id"))
	codeVerifier := strings.TrimSpace(r.Form.Get("code_verifier"))

	if code == "" || redirectURI == "" || clientID == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	token, err := h.TokenService.ExchangeAuthorizationCode(ctx, clientID, code, redirectURI, codeVerifier)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidClient):
			authsdk.ErrInvalidClient.WriteError(w)
		case errors.Is(err, service.ErrInvalidGrant):
			authsdk.ErrInvalidGrant.WriteError(w)
		case errors.Is(err, service.ErrInvalidScope):
			authsdk.ErrInvalidScope.WriteError(w)
		default:
			log.Error("authorization_code grant failed", "err", err)
			authsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   int(token.ExpiresIn.Seconds()),
		Scope:       strings.TrimSpace(token.Scope),
	})
}
