package service

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors the HTTP layer maps onto OAuth2 / problem responses.
// Everything that would let a caller probe the state of an authorization
// code collapses into ErrInvalidGrant.
var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrInvalidClient      = errors.New("invalid_client")
	ErrInvalidScope       = errors.New("invalid_scope")
	ErrInvalidGrant       = errors.New("invalid_grant")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrLoginRequired      = errors.New("login_required")
	ErrUsernameTaken      = errors.New("username_taken")
)

// FieldIssue is one validation failure on a named request field.
type FieldIssue struct {
	Field   string
	Message string
}

// ValidationError carries per-field failures from registration so the
// HTTP layer can render them next to the form inputs.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
