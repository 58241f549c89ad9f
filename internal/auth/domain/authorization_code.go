package domain

import "time"

// AuthorizationCode represents an OAuth 2.0 authorization code issuance.
// Only the SHA-256 fingerprint of the code is stored; the raw value
// exists just long enough to ride the redirect back to the client.
type AuthorizationCode struct {
	ID                  string
	UserID              string
	ClientID            string
	CodeHash            string
	RedirectURI         string
	Scopes              []string
	CodeChallenge       string
	CodeChallengeMethod string
	ExpiresAt           time.Time
	UsedAt              *time.Time
	CreatedAt           time.Time
}
