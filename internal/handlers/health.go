package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// Health reports the status of the service dependencies
type Health struct {
	// critical checks gate readiness, the rest only degrade /api/health
	critical map[string]HealthCheck
	optional map[string]HealthCheck
	timeout  time.Duration
}

// NewHealth creates an empty set of checks
func NewHealth() *Health {
	return &Health{
		critical: make(map[string]HealthCheck),
		optional: make(map[string]HealthCheck),
		timeout:  2 * time.Second,
	}
}

// Critical registers a check that must pass for the service to be ready
func (h *Health) Critical(name string, check HealthCheck) *Health {
	h.critical[name] = check
	return h
}

// Optional registers a check that only degrades the health report
func (h *Health) Optional(name string, check HealthCheck) *Health {
	h.optional[name] = check
	return h
}

// Handler serves /api/health with every check result
func (h *Health) Handler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := "ok"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	run := func(group map[string]HealthCheck) {
		for name, check := range group {
			if err := check(ctx); err != nil {
				status = "degraded"
				httpStatus = http.StatusServiceUnavailable
				checks[name] = map[string]string{"status": "unhealthy", "error": err.Error()}
				continue
			}
			checks[name] = map[string]string{"status": "healthy"}
		}
	}
	run(h.critical)
	run(h.optional)

	respondJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

// Liveness answers the liveness probe without checking dependencies
func (h *Health) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// Readiness answers the readiness probe from the critical checks
func (h *Health) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	for name, check := range h.critical {
		if err := check(ctx); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":    "not_ready",
				"reason":    name + "_unavailable",
				"timestamp": time.Now().Unix(),
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}
