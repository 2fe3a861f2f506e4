package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service liveness and dependency readiness.
type HealthHandler struct {
	dependencies map[string]Pinger
}

func NewHealthHandler(dependencies map[string]Pinger) *HealthHandler {
	return &HealthHandler{dependencies: dependencies}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	overall := "ok"
	status := http.StatusOK
	checks := make(map[string]string, len(h.dependencies))
	for name, dep := range h.dependencies {
		if err := dep.Ping(ctx); err != nil {
			checks[name] = "unreachable"
			overall = "degraded"
			status = http.StatusServiceUnavailable
		} else {
			checks[name] = "ok"
		}
	}

	respondWithJSON(w, status, map[string]interface{}{
		"status": overall,
		"checks": checks,
	})
}
