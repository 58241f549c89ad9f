package http

import (
	"net/http"
	"time"

	"github.com/galleria-app/galleria/pkg/httpx"
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

// HealthzHandler answers readiness: verification keys are loaded. A
// gateway without keys would reject every bearer token, so it must not
// take traffic until the first JWKS fetch lands.
func HealthzHandler(ready func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil && !ready() {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "verification keys not loaded"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
