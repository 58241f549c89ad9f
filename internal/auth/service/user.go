package service

import (
	"context"
	"errors"
	"strings"

	"github.com/galleria-app/galleria/internal/auth/domain"
	"github.com/galleria-app/galleria/internal/auth/store"
	"github.com/galleria-app/galleria/pkg/cryptox"
	"github.com/galleria-app/galleria/pkg/idx"
	"github.com/galleria-app/galleria/pkg/slogx"
)

// DefaultAuthorities are granted to self-registered accounts.
var DefaultAuthorities = []string{"read", "write"}

type UserService struct {
	Store store.Store
}

// Register creates a new account. Input problems come back as a
// *ValidationError with per-field messages; a taken username is
// ErrUsernameTaken.
func (s *UserService) Register(ctx context.Context, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)

	if verr := validateRegistration(username, password); verr != nil {
		return domain.User{}, verr
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:                    idx.New().String(),
		Username:              username,
		PasswordHash:          hash,
		Authorities:           DefaultAuthorities,
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered", "username", username)
	return user, nil
}

// Authenticate verifies a username/password pair and the account status
// flags. Every failure mode collapses into ErrInvalidCredentials; the
// specific reason is only logged.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("login failed: unknown username")
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		log.Info("login failed: password mismatch", "user_id", user.ID)
		return domain.User{}, ErrInvalidCredentials
	}

	if !user.Active() {
		log.Info("login failed: account inactive", "user_id", user.ID)
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

func validateRegistration(username, password string) *ValidationError {
	var issues []FieldIssue

	switch {
	case username == "":
		issues = append(issues, FieldIssue{Field: "username", Message: "username is required"})
	case len(username) < 3 || len(username) > 50:
		issues = append(issues, FieldIssue{Field: "username", Message: "username must be between 3 and 50 characters"})
	}

	switch {
	case password == "":
		issues = append(issues, FieldIssue{Field: "password", Message: "password is required"})
	case len(password) < 8:
		issues = append(issues, FieldIssue{Field: "password", Message: "password must be at least 8 characters"})
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
