package service

import (
	"context"
	"strings"
	"time"

	"github.com/galleria-app/galleria/internal/auth/domain"
	"github.com/galleria-app/galleria/internal/auth/store"
	"github.com/galleria-app/galleria/pkg/authsdk"
	"github.com/galleria-app/galleria/pkg/cryptox"
	"github.com/galleria-app/galleria/pkg/idx"
	"github.com/galleria-app/galleria/pkg/slogx"
)

// DefaultCodeTTL is how long an authorization code stays redeemable.
const DefaultCodeTTL = 5 * time.Minute

// AuthorizeService validates authorization requests and issues
// single-use authorization codes per RFC 6749 section 4.1.
type AuthorizeService struct {
	Store   store.Store
	Clients *ClientRegistry
	CodeTTL time.Duration
}

// AuthorizeRequest captures the query parameters of an authorization
// request, before validation.
type AuthorizeRequest struct {
	ResponseType        string
	ClientID            string
	RedirectURI         string
	Scope               []string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// AuthorizeCodeResponse contains the issued code and the redirect
// information needed to send it back to the client.
type AuthorizeCodeResponse struct {
	Code        string
	RedirectURI string
	State       string
}

// Validate checks the request against the client registry: known
// client, exact registered redirect URI, allowed scopes, and PKCE
// rules. It returns the resolved client and the normalized challenge
// method so issuance can reuse them.
//
// Validation happens before the user is ever asked to log in, so a
// broken request fails fast instead of after a round trip through the
// login page.
func (s *AuthorizeService) Validate(req AuthorizeRequest) (domain.Client, string, error) {
	if !strings.EqualFold(strings.TrimSpace(req.ResponseType), "code") {
		return domain.Client{}, "", ErrInvalidRequest
	}
	if strings.TrimSpace(req.ClientID) == "" || strings.TrimSpace(req.RedirectURI) == "" {
		return domain.Client{}, "", ErrInvalidRequest
	}

	client, err := s.Clients.Get(req.ClientID)
	if err != nil {
		return domain.Client{}, "", err
	}

	if !client.AllowsRedirectURI(req.RedirectURI) {
		return domain.Client{}, "", ErrInvalidRequest
	}
	if !client.AllowsScope(req.Scope) {
		return domain.Client{}, "", ErrInvalidScope
	}

	method, err := validatePKCE(req.CodeChallenge, req.CodeChallengeMethod, client)
	if err != nil {
		return domain.Client{}, "", err
	}

	return client, method, nil
}

// IssueCode mints a single-use authorization code for an already
// authenticated user. The raw code goes back on the redirect; only its
// SHA-256 fingerprint is stored.
func (s *AuthorizeService) IssueCode(ctx context.Context, userID string, req AuthorizeRequest) (*AuthorizeCodeResponse, error) {
	log := slogx.FromContext(ctx)

	client, method, err := s.Validate(req)
	if err != nil {
		return nil, err
	}

	code, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ttl := s.CodeTTL
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}

	record := domain.AuthorizationCode{
		ID:                  idx.New().String(),
		UserID:              userID,
		ClientID:            client.ID,
		CodeHash:            cryptox.FingerprintToken(code),
		RedirectURI:         req.RedirectURI,
		Scopes:              req.Scope,
		CodeChallenge:       strings.TrimSpace(req.CodeChallenge),
		CodeChallengeMethod: method,
		ExpiresAt:           now.Add(ttl),
		CreatedAt:           now,
	}

	if err := s.Store.AuthorizationCodes().CreateAuthorizationCode(ctx, record); err != nil {
		return nil, err
	}

	log.Info("authorization code issued",
		"client_id", client.ID,
		"user_id", userID,
		"challenge_method", method,
	)

	return &AuthorizeCodeResponse{
		Code:        code,
		RedirectURI: req.RedirectURI,
		State:       req.State,
	}, nil
}

// validatePKCE enforces the challenge rules: public clients MUST send a
// challenge, the method must be S256 or plain, and an omitted method
// defaults to S256.
func validatePKCE(challenge, method string, client domain.Client) (string, error) {
	trimmedChallenge := strings.TrimSpace(challenge)
	trimmedMethod := strings.TrimSpace(method)

	if trimmedChallenge == "" {
		if client.Public {
			return "", ErrInvalidRequest
		}
		return "", nil
	}

	switch {
	case strings.EqualFold(trimmedMethod, authsdk.CodeChallengeMethodS256):
		return authsdk.CodeChallengeMethodS256, nil
	case strings.EqualFold(trimmedMethod, authsdk.CodeChallengeMethodPlain):
		return authsdk.CodeChallengeMethodPlain, nil
	case trimmedMethod == "":
		return authsdk.CodeChallengeMethodS256, nil
	default:
		return "", ErrInvalidRequest
	}
}
