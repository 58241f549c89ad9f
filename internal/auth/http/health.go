package http

import (
	"net/http"
	"time"

	"github.com/galleria-app/galleria/internal/auth/store"
	"github.com/galleria-app/galleria/pkg/httpx"
	"github.com/galleria-app/galleria/pkg/jwtx"
)

// LivezHandler answers liveness probes: the process is up.
func LivezHandler(startTime time.Time, buildVersion string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"version": buildVersion,
			"uptime":  time.Since(startTime).Round(time.Second).String(),
		})
	}
}

// HealthzHandler answers readiness: the database responds and the
// signing key is loaded. Without a signing key the service must not
// accept traffic, it could never complete a token exchange.
func HealthzHandler(st store.Store, keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
			return
		}
		if !keys.IsReady() {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "signing key not loaded"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
