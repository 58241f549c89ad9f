package app

import (
	"fmt"
	"log/slog"

	"github.com/galleria-app/galleria/pkg/jwtx"
)

// InitAuthKeys generates the service's ephemeral RSA signing key pair.
//
// Keys live only in memory: a restart mints a fresh key pair under a new
// key ID, so every previously issued token stops verifying. Resource
// services pick up the new public key from the JWKS endpoint when they
// see the unknown kid.
//
// Key generation failure is fatal. An auth service without a signing key
// cannot do its one job, so it must not come up and pretend otherwise.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	keyManager, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:  cfg.Issuer,
		RSABits: cfg.RSABits,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
	}

	logger.Info("generated ephemeral signing key",
		"algorithm", "RS256",
		"issuer", cfg.Issuer,
	)
	logger.Warn("all previously issued tokens are now invalid")

	return keyManager, nil
}
