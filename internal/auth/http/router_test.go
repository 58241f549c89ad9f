package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galleria-app/galleria/internal/auth/domain"
	authhttp "github.com/galleria-app/galleria/internal/auth/http"
	"github.com/galleria-app/galleria/internal/auth/service"
	"github.com/galleria-app/galleria/internal/auth/session"
	"github.com/galleria-app/galleria/internal/auth/store/drivers/sqlite"
	"github.com/galleria-app/galleria/pkg/authsdk"
	"github.com/galleria-app/galleria/pkg/jwtx"
)

const (
	testIssuer   = "galleria-auth"
	testClientID = "galleria-front"
	testRedirect = "http://front.local/authorized"
	frontendURL  = "http://front.local/"
)

type testServer struct {
	*httptest.Server
	km     *jwtx.KeyManager
	client *http.Client
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: testIssuer})
	require.NoError(t, err)

	sessions := session.NewStore(10 * time.Minute)
	t.Cleanup(func() { _ = sessions.Close() })

	clients := service.NewClientRegistry(domain.Client{
		ID:           testClientID,
		Name:         "Galleria Frontend",
		RedirectURIs: []string{testRedirect},
		Scopes:       []string{"openid", "catalog.read"},
		Public:       true,
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := authhttp.NewRouter(km.KeySet, testIssuer, "test", st, sessions, logger)
	router.AuthorizeService = &service.AuthorizeService{Store: st, Clients: clients}
	router.TokenService = &service.TokenService{
		KeyManager: km,
		Store:      st,
		Clients:    clients,
		Issuer:     testIssuer,
	}
	router.UserService = &service.UserService{Store: st}
	router.FrontendURL = frontendURL
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testServer{
		Server: srv,
		km:     km,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// csrfToken reads the CSRF cookie the server handed this client.
func (ts *testServer) csrfToken(t *testing.T) string {
	t.Helper()
	u, _ := url.Parse(ts.URL)
	for _, c := range ts.client.Jar.Cookies(u) {
		if c.Name == session.CSRFCookieName {
			return c.Value
		}
	}
	t.Fatal("no CSRF cookie set")
	return ""
}

func (ts *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := ts.client.Get(ts.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (ts *testServer) postForm(t *testing.T, path string, form url.Values, csrf string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if csrf != "" {
		req.Header.Set(session.CSRFHeaderName, csrf)
	}
	resp, err := ts.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (ts *testServer) register(t *testing.T, username, password string) {
	t.Helper()

	// Establish a session (and CSRF token) first.
	resp := ts.get(t, "/register")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	form := url.Values{"username": {username}, "password": {password}}
	resp = ts.postForm(t, "/register", form, ts.csrfToken(t))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?registered", resp.Header.Get("Location"))
}

func (ts *testServer) login(t *testing.T, username, password string) *http.Response {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	return ts.postForm(t, "/login", form, ts.csrfToken(t))
}

func authorizeQuery(challenge string) url.Values {
	return url.Values{
		"response_type":         {"code"},
		"client_id":             {testClientID},
		"redirect_uri":          {testRedirect},
		"scope":                 {"openid"},
		"state":                 {"xyz"},
		"code_challenge":        {challenge},
		"code_challenge_method": {"S256"},
	}
}

func TestFullAuthorizationCodeFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "duchamp", "hunter2hunter2")

	verifier, err := authsdk.GenerateCodeVerifier()
	require.NoError(t, err)
	query := authorizeQuery(authsdk.CodeChallengeS256(verifier))

	// 1. Unauthenticated authorize request parks the query and bounces
	//    to login.
	resp := ts.get(t, "/oauth2/authorize?"+query.Encode())
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// 2. Login resumes the parked authorization request.
	resp = ts.login(t, "duchamp", "hunter2hunter2")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/oauth2/authorize?"))

	// 3. Replaying the authorize request now yields a code on the
	//    registered redirect URI.
	resp = ts.get(t, resp.Header.Get("Location"))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "front.local", loc.Host)
	assert.Equal(t, "xyz", loc.Query().Get("state"))
	code := loc.Query().Get("code")
	require.NotEmpty(t, code)

	// 4. Exchange the code with the PKCE verifier.
	sdk := authsdk.NewSDKClient(ts.URL)
	token, err := sdk.ExchangeAuthorizationCode(context.Background(), testClientID, code, testRedirect, verifier)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)

	claims, err := ts.km.Verifier.Verify(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "duchamp", claims.Username)

	// 5. The code is single-use: a replay gets invalid_grant.
	_, err = sdk.ExchangeAuthorizationCode(context.Background(), testClientID, code, testRedirect, verifier)
	var oerr *authsdk.OAuth2Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, authsdk.ErrorCodeInvalidGrant, oerr.Code)
	assert.Equal(t, http.StatusBadRequest, oerr.StatusCode)
}

func TestLoginWithoutPendingGoesToFrontend(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "duchamp", "hunter2hunter2")

	resp := ts.login(t, "duchamp", "hunter2hunter2")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, frontendURL, resp.Header.Get("Location"))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "duchamp", "hunter2hunter2")

	resp := ts.login(t, "duchamp", "wrong-password")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?error", resp.Header.Get("Location"))
}

func TestCsrfGuardOnLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "duchamp", "hunter2hunter2")

	// Session cookie present, CSRF header absent.
	form := url.Values{"username": {"duchamp"}, "password": {"hunter2hunter2"}}
	resp := ts.postForm(t, "/login", form, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.postForm(t, "/login", form, "forged-token")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestTokenEndpointHasNoCsrfGuard(t *testing.T) {
	ts := newTestServer(t)

	// No session, no CSRF token: the endpoint still answers with an
	// OAuth2 error rather than a CSRF rejection.
	resp, err := http.PostForm(ts.URL+"/oauth2/token", url.Values{"grant_type": {"password"}})
	require.NoError(t, err)
	defer resp.Body.Close()

	var body authsdk.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, authsdk.ErrorCodeUnsupportedGrantType, body.Error)
}

func TestAuthorizeRejectsUnknownClientWithoutRedirect(t *testing.T) {
	ts := newTestServer(t)

	q := authorizeQuery("challenge")
	q.Set("client_id", "evil")
	resp := ts.get(t, "/oauth2/authorize?"+q.Encode())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	q = authorizeQuery("challenge")
	q.Set("redirect_uri", "http://evil.local/steal")
	resp = ts.get(t, "/oauth2/authorize?"+q.Encode())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthorizeRedirectsScopeErrorToClient(t *testing.T) {
	ts := newTestServer(t)

	q := authorizeQuery("challenge")
	q.Set("scope", "admin")
	resp := ts.get(t, "/oauth2/authorize?"+q.Encode())
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "front.local", loc.Host)
	assert.Equal(t, authsdk.ErrorCodeInvalidScope, loc.Query().Get("error"))
	assert.Equal(t, "xyz", loc.Query().Get("state"))
}

func TestRegisterJSONValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.get(t, "/login") // establish session + CSRF token
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := strings.NewReader(`{"username":"ab","password":"short"}`)
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/register", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(session.CSRFHeaderName, ts.csrfToken(t))

	res, err := ts.client.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	var problem struct {
		Status int `json:"status"`
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&problem))
	assert.Equal(t, http.StatusBadRequest, problem.Status)
	assert.Len(t, problem.Errors, 2)
}

func TestLogoutClearsSession(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "duchamp", "hunter2hunter2")
	resp := ts.login(t, "duchamp", "hunter2hunter2")
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = ts.postForm(t, "/logout", url.Values{}, ts.csrfToken(t))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, frontendURL, resp.Header.Get("Location"))

	// A fresh authorize request must go through login again.
	verifier, err := authsdk.GenerateCodeVerifier()
	require.NoError(t, err)
	resp = ts.get(t, "/oauth2/authorize?"+authorizeQuery(authsdk.CodeChallengeS256(verifier)).Encode())
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestJWKSAndHealth(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.get(t, "/.well-known/jwks.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var jwks jwtx.JWKS
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jwks))
	require.Len(t, jwks.Keys, 1)
	assert.Equal(t, "RS256", jwks.Keys[0].Alg)

	resp = ts.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.get(t, "/livez")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
