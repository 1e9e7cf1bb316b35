// Package handler exposes the admin dashboard stats endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"restyle/internal/platform/metrics"
	"restyle/internal/platform/middleware"
	"restyle/internal/stats/service"
	"restyle/internal/transport/http/shared"
)

// Service is the stats surface the handler depends on.
type Service interface {
	Snapshot(ctx context.Context) (*service.Snapshot, error)
}

// Handler handles the stats endpoint.
type Handler struct {
	logger    *slog.Logger
	stats     Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a stats Handler.
func New(stats Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		stats:     stats,
		metrics:   m,
		validator: validator,
	}
}

// Register mounts the stats route behind admin auth.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(statsRouter chi.Router) {
		statsRouter.Use(middleware.Recovery(h.logger))
		statsRouter.Use(middleware.RequestID)
		statsRouter.Use(middleware.Logger(h.logger))
		statsRouter.Use(middleware.Timeout(10 * time.Second))
		statsRouter.Use(middleware.LatencyMiddleware(h.metrics))
		statsRouter.Use(middleware.RequireAdmin(h.validator, h.logger))
		statsRouter.Get("/admin/stats", h.handleSnapshot)
	})
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snapshot, err := h.stats.Snapshot(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to assemble stats snapshot",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, snapshot)
}
