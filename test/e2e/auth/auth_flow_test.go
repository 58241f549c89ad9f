package auth_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galleria-app/galleria/pkg/authsdk"
)

func TestAuthorizationCodeFlowEndToEnd(t *testing.T) {
	baseURL, shutdown := startAuth(t, freePort(t))
	defer shutdown()

	browser := newBrowser(t)
	registerUser(t, browser, baseURL)

	verifier, err := authsdk.GenerateCodeVerifier()
	require.NoError(t, err)

	sdk := authsdk.NewSDKClient(baseURL)
	authorizeURL := sdk.BuildAuthorizeURL(authsdk.AuthorizeRequest{
		ClientID:      testClientID,
		RedirectURI:   testRedirect,
		Scope:         "openid catalog.read",
		State:         "e2e-state",
		CodeChallenge: authsdk.CodeChallengeS256(verifier),
	})

	// Not logged in yet: the authorize request parks and bounces to the
	// login page.
	resp, err := browser.Get(authorizeURL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	// Login resumes the parked request and the replay yields a code.
	resp = postForm(t, browser, baseURL, "/login", url.Values{
		"username": {testUsername},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	resume := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(resume, "/oauth2/authorize?"))

	resp, err = browser.Get(baseURL + resume)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "e2e-state", loc.Query().Get("state"))
	code := loc.Query().Get("code")
	require.NotEmpty(t, code)

	// Exchange the code for a token and confirm it is single-use.
	token, err := sdk.ExchangeAuthorizationCode(t.Context(), testClientID, code, testRedirect, verifier)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)
	assert.Positive(t, token.ExpiresIn)

	_, err = sdk.ExchangeAuthorizationCode(t.Context(), testClientID, code, testRedirect, verifier)
	var oerr *authsdk.OAuth2Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, authsdk.ErrorCodeInvalidGrant, oerr.Code)
}

func TestHealthAndJWKSEndToEnd(t *testing.T) {
	baseURL, shutdown := startAuth(t, freePort(t))
	defer shutdown()

	sdk := authsdk.NewSDKClient(baseURL)

	health, err := sdk.GetHealth(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)

	jwks, err := sdk.GetJWKS(t.Context())
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
}

func TestWrongVerifierBurnsCodeEndToEnd(t *testing.T) {
	baseURL, shutdown := startAuth(t, freePort(t))
	defer shutdown()

	browser := newBrowser(t)
	registerUser(t, browser, baseURL)

	verifier, err := authsdk.GenerateCodeVerifier()
	require.NoError(t, err)

	sdk := authsdk.NewSDKClient(baseURL)
	authorizeURL := sdk.BuildAuthorizeURL(authsdk.AuthorizeRequest{
		ClientID:      testClientID,
		RedirectURI:   testRedirect,
		Scope:         "openid",
		CodeChallenge: authsdk.CodeChallengeS256(verifier),
	})

	resp, err := browser.Get(authorizeURL)
	require.NoError(t, err)
	resp.Body.Close()

	resp = postForm(t, browser, baseURL, "/login", url.Values{
		"username": {testUsername},
		"password": {testPassword},
	})
	resp, err = browser.Get(baseURL + resp.Header.Get("Location"))
	require.NoError(t, err)
	resp.Body.Close()

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	code := loc.Query().Get("code")
	require.NotEmpty(t, code)

	// A wrong verifier fails the exchange and burns the code, so even
	// the correct verifier cannot redeem it afterwards.
	wrong, err := authsdk.GenerateCodeVerifier()
	require.NoError(t, err)
	_, err = sdk.ExchangeAuthorizationCode(t.Context(), testClientID, code, testRedirect, wrong)
	var oerr *authsdk.OAuth2Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, authsdk.ErrorCodeInvalidGrant, oerr.Code)

	_, err = sdk.ExchangeAuthorizationCode(t.Context(), testClientID, code, testRedirect, verifier)
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, authsdk.ErrorCodeInvalidGrant, oerr.Code)
}
