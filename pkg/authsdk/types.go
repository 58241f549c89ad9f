package authsdk

import (
	"encoding/json"
	"time"
)

// TokenResponse is the success body of the token endpoint. There is no
// refresh token: access tokens are short-lived and clients re-run the
// authorization code flow when one expires.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// ErrorResponse is the error body of the token endpoint per RFC 6749.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// JWKSResponse is the body of the JWKS endpoint.
type JWKSResponse struct {
	Keys []json.RawMessage `json:"keys"`
}

// SessionDescriptor is the body of the gateway session endpoint. All
// fields are null for an anonymous or invalid session; the endpoint
// still answers 200 in that case.
type SessionDescriptor struct {
	Username  *string    `json:"username"`
	IssuedAt  *time.Time `json:"issuedAt"`
	ExpiresAt *time.Time `json:"expiresAt"`
}
