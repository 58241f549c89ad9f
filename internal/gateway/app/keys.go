package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/galleria-app/galleria/pkg/authsdk"
	"github.com/galleria-app/galleria/pkg/jwtx"
)

// jwksFetcher adapts the auth SDK's JWKS call into the shape the remote
// verifier wants.
func jwksFetcher(sdk *authsdk.SDKClient) jwtx.JWKSFetchFunc {
	return func(ctx context.Context) (jwtx.JWKS, error) {
		resp, err := sdk.GetJWKS(ctx)
		if err != nil {
			return jwtx.JWKS{}, err
		}

		jwks := jwtx.JWKS{Keys: make([]jwtx.JWK, 0, len(resp.Keys))}
		for _, raw := range resp.Keys {
			var key jwtx.JWK
			if err := json.Unmarshal(raw, &key); err != nil {
				return jwtx.JWKS{}, fmt.Errorf("malformed JWK: %w", err)
			}
			jwks.Keys = append(jwks.Keys, key)
		}
		return jwks, nil
	}
}
