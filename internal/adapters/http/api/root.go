// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// RootHandler serves the service descriptor at the API root.
type RootHandler struct{}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET / requests with a short index of the
// available endpoints.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "rubricheck",
		"endpoints": map[string]string{
			"POST /api/evaluate": "grade one assignment against a rubric",
			"GET /healthz":       "liveness probe",
			"GET /metrics":       "Prometheus metrics",
			"GET /stats":         "service counters",
			"GET /api-docs":      "API documentation",
		},
	})
}
