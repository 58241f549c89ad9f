package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galleria-app/galleria/internal/auth/domain"
	"github.com/galleria-app/galleria/internal/auth/service"
	"github.com/galleria-app/galleria/internal/auth/store"
	"github.com/galleria-app/galleria/internal/auth/store/drivers/sqlite"
	"github.com/galleria-app/galleria/pkg/authsdk"
	"github.com/galleria-app/galleria/pkg/cryptox"
	"github.com/galleria-app/galleria/pkg/jwtx"
)

const (
	testIssuer   = "galleria-auth"
	testClientID = "galleria-front"
	testRedirect = "http://front.local/authorized"
)

func testClient() domain.Client {
	return domain.Client{
		ID:           testClientID,
		Name:         "Galleria Frontend",
		RedirectURIs: []string{testRedirect},
		Scopes:       []string{"openid", "catalog.read"},
		Public:       true,
	}
}

type fixture struct {
	store     store.Store
	users     *service.UserService
	authorize *service.AuthorizeService
	tokens    *service.TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: testIssuer})
	require.NoError(t, err)

	clients := service.NewClientRegistry(testClient())

	return &fixture{
		store:     st,
		users:     &service.UserService{Store: st},
		authorize: &service.AuthorizeService{Store: st, Clients: clients},
		tokens: &service.TokenService{
			KeyManager: km,
			Store:      st,
			Clients:    clients,
			Issuer:     testIssuer,
		},
	}
}

func (f *fixture) registerUser(t *testing.T, username string) domain.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), username, "hunter2hunter2")
	require.NoError(t, err)
	return u
}

func (f *fixture) issueCode(t *testing.T, userID, challenge, method string) *service.AuthorizeCodeResponse {
	t.Helper()
	resp, err := f.authorize.IssueCode(context.Background(), userID, service.AuthorizeRequest{
		ResponseType:        "code",
		ClientID:            testClientID,
		RedirectURI:         testRedirect,
		Scope:               []string{"openid"},
		State:               "xyz",
		CodeChallenge:       challenge,
		CodeChallengeMethod: method,
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.registerUser(t, "duchamp")
	assert.Equal(t, service.DefaultAuthorities, u.Authorities)
	assert.True(t, u.Active())

	got, err := f.users.Authenticate(ctx, "duchamp", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.users.Authenticate(ctx, "duchamp", "wrong-password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = f.users.Authenticate(ctx, "nobody", "hunter2hunter2")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, "ab", "short")
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Issues, 2)

	f.registerUser(t, "duchamp")
	_, err = f.users.Register(ctx, "duchamp", "hunter2hunter2")
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestAuthorizeValidate(t *testing.T) {
	f := newFixture(t)

	base := service.AuthorizeRequest{
		ResponseType:        "code",
		ClientID:            testClientID,
		RedirectURI:         testRedirect,
		Scope:               []string{"openid"},
		CodeChallenge:       "challenge",
		CodeChallengeMethod: "S256",
	}

	_, method, err := f.authorize.Validate(base)
	require.NoError(t, err)
	assert.Equal(t, "S256", method)

	// Method defaults to S256 when omitted.
	req := base
	req.CodeChallengeMethod = ""
	_, method, err = f.authorize.Validate(req)
	require.NoError(t, err)
	assert.Equal(t, "S256", method)

	req = base
	req.ResponseType = "token"
	_, _, err = f.authorize.Validate(req)
	assert.ErrorIs(t, err, service.ErrInvalidRequest)

	req = base
	req.ClientID = "unknown"
	_, _, err = f.authorize.Validate(req)
	assert.ErrorIs(t, err, service.ErrInvalidClient)

	req = base
	req.RedirectURI = "http://evil.local/authorized"
	_, _, err = f.authorize.Validate(req)
	assert.ErrorIs(t, err, service.ErrInvalidRequest)

	req = base
	req.Scope = []string{"admin"}
	_, _, err = f.authorize.Validate(req)
	assert.ErrorIs(t, err, service.ErrInvalidScope)

	// Public client must send a challenge.
	req = base
	req.CodeChallenge = ""
	_, _, err = f.authorize.Validate(req)
	assert.ErrorIs(t, err, service.ErrInvalidRequest)

	req = base
	req.CodeChallengeMethod = "S512"
	_, _, err = f.authorize.Validate(req)
	assert.ErrorIs(t, err, service.ErrInvalidRequest)
}

func TestExchangeS256RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.registerUser(t, "duchamp")

	verifier, err := authsdk.GenerateCodeVerifier()
	require.NoError(t, err)
	code := f.issueCode(t, u.ID, authsdk.CodeChallengeS256(verifier), "S256")

	token, err := f.tokens.ExchangeAuthorizationCode(ctx, testClientID, code.Code, testRedirect, verifier)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.Equal(t, "openid", token.Scope)

	claims, err := f.tokens.KeyManager.Verifier.Verify(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, "duchamp", claims.Username)
	assert.Equal(t, service.DefaultAuthorities, claims.Authorities)

	// Single use: the same code cannot be redeemed twice.
	_, err = f.tokens.ExchangeAuthorizationCode(ctx, testClientID, code.Code, testRedirect, verifier)
	assert.ErrorIs(t, err, service.ErrInvalidGrant)
}

func TestExchangePlainMethod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.registerUser(t, "duchamp")

	verifier := "plain-verifier-plain-verifier-plain-verifier"
	code := f.issueCode(t, u.ID, verifier, "plain")

	_, err := f.tokens.ExchangeAuthorizationCode(ctx, testClientID, code.Code, testRedirect, verifier)
	assert.NoError(t, err)
}

func TestExchangeRejectsWrongVerifier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.registerUser(t, "duchamp")

	verifier, err := authsdk.GenerateCodeVerifier()
	require.NoError(t, err)
	code := f.issueCode(t, u.ID, authsdk.CodeChallengeS256(verifier), "S256")

	_, err = f.tokens.ExchangeAuthorizationCode(ctx, testClientID, code.Code, testRedirect, "not-the-verifier-not-the-verifier-not-it")
	assert.ErrorIs(t, err, service.ErrInvalidGrant)

	// The failed attempt burned the code; the right verifier no longer helps.
	_, err = f.tokens.ExchangeAuthorizationCode(ctx, testClientID, code.Code, testRedirect, verifier)
	assert.ErrorIs(t, err, service.ErrInvalidGrant)
}

func TestExchangeRejectsWrongBindings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.registerUser(t, "duchamp")

	verifier, err := authsdk.GenerateCodeVerifier()
	require.NoError(t, err)

	code := f.issueCode(t, u.ID, authsdk.CodeChallengeS256(verifier), "S256")
	_, err = f.tokens.ExchangeAuthorizationCode(ctx, testClientID, code.Code, "http://front.local/other", verifier)
	assert.ErrorIs(t, err, service.ErrInvalidGrant)

	code = f.issueCode(t, u.ID, authsdk.CodeChallengeS256(verifier), "S256")
	_, err = f.tokens.ExchangeAuthorizationCode(ctx, "unknown-client", code.Code, testRedirect, verifier)
	assert.ErrorIs(t, err, service.ErrInvalidClient)

	_, err = f.tokens.ExchangeAuthorizationCode(ctx, testClientID, "never-issued", testRedirect, verifier)
	assert.ErrorIs(t, err, service.ErrInvalidGrant)
}

func TestExchangeRejectsExpiredCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.registerUser(t, "duchamp")

	verifier, err := authsdk.GenerateCodeVerifier()
	require.NoError(t, err)

	// Plant an already-expired code directly in the store.
	require.NoError(t, f.store.AuthorizationCodes().CreateAuthorizationCode(ctx, domain.AuthorizationCode{
		ID:                  "code-expired",
		UserID:              u.ID,
		ClientID:            testClientID,
		CodeHash:            cryptox.FingerprintToken("stale-code"),
		RedirectURI:         testRedirect,
		Scopes:              []string{"openid"},
		CodeChallenge:       authsdk.CodeChallengeS256(verifier),
		CodeChallengeMethod: "S256",
		ExpiresAt:           time.Now().Add(-time.Minute),
	}))

	_, err = f.tokens.ExchangeAuthorizationCode(ctx, testClientID, "stale-code", testRedirect, verifier)
	assert.ErrorIs(t, err, service.ErrInvalidGrant)
}
