package domain

import "time"

// User is an account that can sign in through the login page. The four
// status flags mirror the classic principal checks: all must hold for
// authentication to succeed.
type User struct {
	ID           string
	Username     string
	PasswordHash string // argon2 encoded
	Authorities  []string

	Enabled               bool
	AccountNonExpired     bool
	AccountNonLocked      bool
	CredentialsNonExpired bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the account passes every status check.
func (u User) Active() bool {
	return u.Enabled && u.AccountNonExpired && u.AccountNonLocked && u.CredentialsNonExpired
}
