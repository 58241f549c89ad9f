package auth_test

import (
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/galleria-app/galleria/internal/auth/app"
)

/*
 * End-to-end tests for the auth service. These boot the real application
 * (config, migrations, key generation, HTTP server) on a loopback port
 * and drive it the way a browser and the SDK would.
 */

const (
	testUsername = "duchamp"
	testPassword = "hunter2hunter2"
	testClientID = "galleria-front"
	testRedirect = "http://front.local/authorized"
	frontendURL  = "http://front.local/"
)

// freePort grabs an ephemeral loopback port.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func authConfig(t *testing.T, port int) app.Config {
	t.Helper()
	return app.Config{
		Issuer:       "galleria-auth",
		DatabaseFile: filepath.Join(t.TempDir(), "auth.db"),

		ClientID:           testClientID,
		ClientName:         "Galleria Frontend",
		ClientRedirectURIs: []string{testRedirect},
		ClientScopes:       []string{"openid", "catalog.read"},
		FrontendURL:        frontendURL,

		SessionTTL:     10 * time.Minute,
		AccessTokenTTL: 15 * time.Minute,
		CodeTTL:        5 * time.Minute,

		Env:                  "dev",
		LogLevel:             "error",
		LogFormat:            "text",
		Port:                 port,
		ShutdownGracePeriod:  5 * time.Second,
		HousekeepingInterval: time.Hour,
	}
}

// startAuth boots the auth application and waits for readiness.
func startAuth(t *testing.T, port int) (baseURL string, shutdown func()) {
	t.Helper()

	application, err := app.New(authConfig(t, port))
	require.NoError(t, err)
	go func() { _ = application.Run() }()

	baseURL = "http://127.0.0.1:" + strconv.Itoa(port)
	waitHealthy(t, baseURL)
	return baseURL, func() { _ = application.Shutdown() }
}

func waitHealthy(t *testing.T, baseURL string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("service did not become healthy")
}

// newBrowser returns a cookie-carrying client that never follows
// redirects, so tests can inspect each hop of the flow.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func csrfToken(t *testing.T, browser *http.Client, baseURL string) string {
	t.Helper()
	u, _ := url.Parse(baseURL)
	for _, c := range browser.Jar.Cookies(u) {
		if c.Name == "XSRF-TOKEN" {
			return c.Value
		}
	}
	t.Fatal("no CSRF cookie")
	return ""
}

func postForm(t *testing.T, browser *http.Client, baseURL, path string, form url.Values) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, baseURL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-XSRF-TOKEN", csrfToken(t, browser, baseURL))
	resp, err := browser.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// registerUser creates an account through the registration form.
func registerUser(t *testing.T, browser *http.Client, baseURL string) {
	t.Helper()

	resp, err := browser.Get(baseURL + "/register")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postForm(t, browser, baseURL, "/register", url.Values{
		"username": {testUsername},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
}
