package jwtx_test

import (
	"testing"
	"time"

	"github.com/galleria-app/galleria/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	c := jwtx.NewAccessClaims("u", nil, time.Hour, "iss-a", "name", time.Now())

	require.NoError(t, c.ValidateIssuer("iss-a"))
	require.NoError(t, c.ValidateIssuer("")) // nothing to enforce
	require.ErrorIs(t, c.ValidateIssuer("iss-b"), jwtx.ErrIssuer)
}

func TestValidateExpiryWithLeeway(t *testing.T) {
	// Expired ten seconds ago.
	c := jwtx.NewAccessClaims("u", nil, time.Minute, "iss", "name",
		time.Now().Add(-time.Minute-10*time.Second))

	require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrExpired)
	require.NoError(t, c.ValidateExpiryWithLeeway(30*time.Second))
}

func TestNewJTIIsUnique(t *testing.T) {
	require.NotEqual(t, jwtx.NewJTI(), jwtx.NewJTI())
}
