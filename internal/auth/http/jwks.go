package http

import (
	"net/http"

	"github.com/galleria-app/galleria/pkg/httpx"
	"github.com/galleria-app/galleria/pkg/jwtx"
)

// JWKSHandler exposes the JSON Web Key Set for public key discovery.
// This is the shared store of verification keys: the gateway and any
// other resource service load it to verify tokens locally.
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, keys.PublicJWKS())
	}
}
