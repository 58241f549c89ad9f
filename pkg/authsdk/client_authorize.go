package authsdk

import "net/url"

// AuthorizeRequest holds the query parameters for the authorization
// endpoint.
type AuthorizeRequest struct {
	ClientID            string
	RedirectURI         string
	Scope               string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
}

// BuildAuthorizeURL builds the browser URL that starts the authorization
// code flow. The caller redirects the user agent there; the code comes
// back on the redirect URI.
func (c *SDKClient) BuildAuthorizeURL(req AuthorizeRequest) string {
	q := url.Values{
		"response_type": {"code"},
		"client_id":     {req.ClientID},
		"redirect_uri":  {req.RedirectURI},
	}
	if req.Scope != "" {
		q.Set("scope", req.Scope)
	}
	if req.State != "" {
		q.Set("state", req.State)
	}
	if req.CodeChallenge != "" {
		q.Set("code_challenge", req.CodeChallenge)
		method := req.CodeChallengeMethod
		if method == "" {
			method = CodeChallengeMethodS256
		}
		q.Set("code_challenge_method", method)
	}

	return c.url("/oauth2/authorize") + "?" + q.Encode()
}
