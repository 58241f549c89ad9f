package domain

import "time"

// Token is what the token endpoint returns: a short-lived signed access
// token. There is no refresh token; when the access token expires the
// client runs the authorization code flow again.
type Token struct {
	AccessToken string
	TokenType   string // always "Bearer"
	ExpiresIn   time.Duration
	Scope       string // space-delimited
}
