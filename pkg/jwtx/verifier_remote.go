package jwtx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultRefetchCooldown limits how often an unknown kid can trigger a
// JWKS refetch. Garbage tokens with made-up kids must not turn into a
// request amplifier against the auth service.
const DefaultRefetchCooldown = 10 * time.Second

// JWKSFetchFunc retrieves the current JWKS from the auth service.
type JWKSFetchFunc func(ctx context.Context) (JWKS, error)

// RemoteVerifier verifies tokens against a KeySet populated from the
// auth service's JWKS endpoint. Verification itself is always local; the
// network is touched only at startup and when a token arrives signed
// under a kid the KeySet does not know, which is what happens after the
// auth service restarts with a fresh ephemeral key.
type RemoteVerifier struct {
	keys  *KeySet
	inner Verifier
	fetch JWKSFetchFunc

	// Cooldown between unknown-kid refetches. Zero means
	// DefaultRefetchCooldown.
	Cooldown time.Duration

	mu        sync.Mutex
	lastFetch time.Time
}

// NewRemoteVerifier builds a RemoteVerifier for the given issuer. It
// does not fetch anything; call Refresh once at startup so the service
// fails fast when the auth service is unreachable.
func NewRemoteVerifier(issuer string, fetch JWKSFetchFunc) *RemoteVerifier {
	keys := NewKeySet()
	return &RemoteVerifier{
		keys:  keys,
		inner: NewVerifierRS256(keys, issuer),
		fetch: fetch,
	}
}

// Refresh replaces the KeySet from a fresh JWKS fetch.
func (v *RemoteVerifier) Refresh(ctx context.Context) error {
	jwks, err := v.fetch(ctx)
	if err != nil {
		return fmt.Errorf("jwtx: JWKS fetch failed: %w", err)
	}
	if err := v.keys.ResetFromJWKS(jwks); err != nil {
		return fmt.Errorf("jwtx: JWKS parse failed: %w", err)
	}

	v.mu.Lock()
	v.lastFetch = time.Now()
	v.mu.Unlock()
	return nil
}

// Ready reports whether at least one verification key is loaded.
func (v *RemoteVerifier) Ready() bool {
	return v.keys.IsReady()
}

// Verify implements Verifier. An unknown kid triggers one throttled
// refetch and a single retry; every other failure is returned as-is.
func (v *RemoteVerifier) Verify(raw string) (Claims, error) {
	claims, err := v.inner.Verify(raw)
	if err == nil || !errors.Is(err, ErrUnknownKID) {
		return claims, err
	}

	if !v.tryRefetch() {
		return Claims{}, err
	}

	return v.inner.Verify(raw)
}

// tryRefetch refreshes the KeySet unless a fetch ran within the
// cooldown window. Reports whether a retry is worthwhile.
func (v *RemoteVerifier) tryRefetch() bool {
	cooldown := v.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultRefetchCooldown
	}

	v.mu.Lock()
	if time.Since(v.lastFetch) < cooldown {
		v.mu.Unlock()
		return false
	}
	v.lastFetch = time.Now()
	v.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	jwks, err := v.fetch(ctx)
	if err != nil {
		return false
	}
	return v.keys.ResetFromJWKS(jwks) == nil
}
