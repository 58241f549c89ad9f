package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/galleria-app/galleria/internal/auth/domain"
	"github.com/galleria-app/galleria/internal/auth/store"
	"github.com/galleria-app/galleria/pkg/authsdk"
	"github.com/galleria-app/galleria/pkg/cryptox"
	"github.com/galleria-app/galleria/pkg/jwtx"
	"github.com/galleria-app/galleria/pkg/slogx"
)

// TokenService implements the authorization_code grant: it redeems
// single-use codes for signed access tokens.
type TokenService struct {
	KeyManager *jwtx.KeyManager
	Store      store.Store
	Clients    *ClientRegistry
	Issuer     string
	AccessTTL  time.Duration
}

// ExchangeAuthorizationCode validates the exchange request, consumes
// the code, verifies PKCE, and signs an access token.
//
// The code is consumed as its own committed statement before the
// binding checks run, so a request that fails redirect or PKCE
// validation still burns the code: a later error must not undo the
// consume. A stolen code can therefore not be retried with corrected
// parameters, and the guarded UPDATE inside ConsumeAuthorizationCode
// guarantees exactly one of two concurrent exchanges can succeed.
func (s *TokenService) ExchangeAuthorizationCode(
	ctx context.Context,
	clientID, code, redirectURI, codeVerifier string,
) (*domain.Token, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	client, err := s.Clients.Get(clientID)
	if err != nil {
		return nil, err
	}

	code = strings.TrimSpace(code)
	redirectURI = strings.TrimSpace(redirectURI)
	codeVerifier = strings.TrimSpace(codeVerifier)
	if code == "" || redirectURI == "" {
		return nil, ErrInvalidGrant
	}

	codeHash := cryptox.FingerprintToken(code)

	authCode, err := s.Store.AuthorizationCodes().ConsumeAuthorizationCode(ctx, codeHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}

	if now.After(authCode.ExpiresAt) {
		return nil, ErrInvalidGrant
	}
	if authCode.ClientID != client.ID {
		return nil, ErrInvalidGrant
	}
	if authCode.RedirectURI != redirectURI {
		return nil, ErrInvalidGrant
	}
	if !verifyCodeVerifier(authCode.CodeChallenge, authCode.CodeChallengeMethod, codeVerifier) {
		l.Info("authorization_code grant PKCE verification failed",
			slog.String("client_id", clientID))
		return nil, ErrInvalidGrant
	}

	user, err := s.Store.Users().GetUserByID(ctx, authCode.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidGrant
		}
		return nil, err
	}
	if !user.Active() {
		return nil, ErrInvalidGrant
	}

	accessToken, err := s.signAccess(user, now)
	if err != nil {
		return nil, err
	}

	l.Info("access token issued",
		slog.String("client_id", clientID),
	)

	return &domain.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.accessTTL(),
		Scope:       strings.Join(authCode.Scopes, " "),
	}, nil
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) signAccess(user domain.User, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(
		user.ID,
		user.Authorities,
		s.accessTTL(),
		s.Issuer,
		user.Username,
		now,
	)
	return s.KeyManager.Signer.Sign(claims)
}

// verifyCodeVerifier checks a PKCE verifier against the stored
// challenge. An empty stored challenge means the code was issued
// without PKCE and any supplied verifier must be absent.
func verifyCodeVerifier(challenge, method, verifier string) bool {
	if challenge == "" {
		return verifier == ""
	}
	if verifier == "" {
		return false
	}

	switch method {
	case authsdk.CodeChallengeMethodS256:
		derived := authsdk.CodeChallengeS256(verifier)
		return subtle.ConstantTimeCompare([]byte(derived), []byte(challenge)) == 1
	case authsdk.CodeChallengeMethodPlain:
		return subtle.ConstantTimeCompare([]byte(verifier), []byte(challenge)) == 1
	default:
		return false
	}
}
