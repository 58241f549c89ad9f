package authsdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeVerifier(t *testing.T) {
	v1, err := GenerateCodeVerifier()
	require.NoError(t, err)
	v2, err := GenerateCodeVerifier()
	require.NoError(t, err)

	assert.NotEqual(t, v1, v2)
	assert.GreaterOrEqual(t, len(v1), 43)
	assert.LessOrEqual(t, len(v1), 128)
}

func TestCodeChallengeS256(t *testing.T) {
	// Appendix B of RFC 7636.
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", CodeChallengeS256(verifier))
}

func TestBuildAuthorizeURL(t *testing.T) {
	c := NewSDKClient("http://auth.local/")

	u := c.BuildAuthorizeURL(AuthorizeRequest{
		ClientID:      "galleria-front",
		RedirectURI:   "http://front.local/authorized",
		Scope:         "openid",
		State:         "xyz",
		CodeChallenge: "abc",
	})

	assert.Contains(t, u, "http://auth.local/oauth2/authorize?")
	assert.Contains(t, u, "response_type=code")
	assert.Contains(t, u, "client_id=galleria-front")
	assert.Contains(t, u, "code_challenge=abc")
	assert.Contains(t, u, "code_challenge_method=S256")
}
