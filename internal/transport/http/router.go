// Package httptransport assembles the application router from the feature
// handlers. Each handler package mounts its own middleware chain; this file
// only composes them and adds the operational endpoints.
package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"restyle/internal/platform/metrics"
	"restyle/internal/transport/http/shared"
)

// HealthChecker reports readiness of one backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Registrar is implemented by every feature handler.
type Registrar interface {
	Register(r chi.Router)
}

// Deps carries everything the router composes.
type Deps struct {
	Handlers []Registrar
	Metrics  *metrics.Metrics
	// Checks maps a dependency name to its health probe. Nil checkers are
	// skipped so memory-only deployments stay healthy.
	Checks map[string]HealthChecker
}

// NewRouter builds the full HTTP surface.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", handleHealth(deps.Checks))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	for _, h := range deps.Handlers {
		h.Register(r)
	}
	return r
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		status := map[string]string{}
		healthy := true
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Health(ctx); err != nil {
				status[name] = "unhealthy"
				healthy = false
				continue
			}
			status[name] = "ok"
		}
		if !healthy {
			shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "degraded",
				"checks": status,
			})
			return
		}
		shared.WriteJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"checks": status,
		})
	}
}
