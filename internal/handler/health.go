package handler

import "net/http"

// Health handles GET /healthz. It reports process liveness only; database
// reachability is checked at startup, not per probe.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
