package jwtx

import (
	"fmt"

	"github.com/galleria-app/galleria/pkg/cryptox"
)

// KeyManager owns the signing key pair for an auth service instance and
// wires it to a KeySet for JWKS publishing and a Verifier for local
// validation.
//
// Keys are ephemeral: generated once at startup and held only in memory,
// so every token becomes invalid when the service restarts. The public
// half is externalized through the JWKS endpoint, which is the shared
// store that lets other instances and resource services verify tokens.
type KeyManager struct {
	Signer   Signer
	Verifier Verifier
	KeySet   *KeySet
}

// KeyManagerOptions configures key generation.
type KeyManagerOptions struct {
	// Issuer is the issuer claim (iss) that will be validated in tokens.
	Issuer string

	// RSABits specifies the RSA key size. Defaults to 2048 if not set.
	// Must be at least 2048.
	RSABits int
}

// NewEphemeralKeyManager generates a fresh RSA signing key pair with a
// random key ID. There is no degraded mode: an auth service that cannot
// generate a signing key must not start, so any error here is fatal to
// the caller.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	bits := opts.RSABits
	if bits == 0 {
		bits = 2048
	}

	pemBytes, err := cryptox.GenerateRSAKey(bits)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to generate signing key: %w", err)
	}

	kid, err := generateRandomKeyID()
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to generate key ID: %w", err)
	}

	signer, err := NewSignerRS256(kid, pemBytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to load signing key: %w", err)
	}

	keyset := NewKeySet()
	if err := keyset.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("jwtx: failed to publish signing key: %w", err)
	}

	return &KeyManager{
		Signer:   signer,
		Verifier: NewVerifierRS256(keyset, opts.Issuer),
		KeySet:   keyset,
	}, nil
}

// IsReady returns true if the KeyManager has a valid key loaded.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}

// generateRandomKeyID creates a random key identifier with 128 bits of
// entropy. Format: "galleria-{token}".
func generateRandomKeyID() (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("galleria-%s", token), nil
}
