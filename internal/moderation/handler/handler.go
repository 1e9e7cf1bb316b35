// Package handler exposes the listing moderation endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"restyle/internal/moderation/models"
	"restyle/internal/moderation/service"
	"restyle/internal/platform/metrics"
	"restyle/internal/platform/middleware"
	"restyle/internal/transport/http/shared"
	id "restyle/pkg/domain"
	dErrors "restyle/pkg/domain-errors"
)

// Service is the moderation surface the handler depends on.
type Service interface {
	Submit(ctx context.Context, req service.SubmitListingRequest) (*models.Listing, error)
	Current(ctx context.Context) (*service.QueueView, error)
	Skip(ctx context.Context) (*service.QueueView, error)
	Approve(ctx context.Context, listingID id.ListingID) (*models.Listing, error)
	Reject(ctx context.Context, listingID id.ListingID, reason string) (*models.Listing, error)
	Queue(ctx context.Context) ([]*models.Listing, *service.QueueView, error)
	Get(ctx context.Context, listingID id.ListingID) (*models.Listing, error)
	List(ctx context.Context, statusFilter string) ([]*models.Listing, error)
}

// Handler handles listing moderation endpoints.
type Handler struct {
	logger    *slog.Logger
	review    Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a moderation Handler.
func New(review Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		review:    review,
		metrics:   m,
		validator: validator,
	}
}

// Register mounts the moderation routes. Submission is open to the listing
// collaborator; the review surface requires an admin token.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(base chi.Router) {
		base.Use(middleware.Recovery(h.logger))
		base.Use(middleware.RequestID)
		base.Use(middleware.RequestTime)
		base.Use(middleware.Logger(h.logger))
		base.Use(middleware.Timeout(30 * time.Second))
		base.Use(middleware.ContentTypeJSON)
		base.Use(middleware.LatencyMiddleware(h.metrics))

		base.Post("/listings", h.handleSubmit)

		base.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireAdmin(h.validator, h.logger))
			admin.Get("/admin/review/current", h.handleCurrent)
			admin.Get("/admin/review/queue", h.handleQueue)
			admin.Post("/admin/review/skip", h.handleSkip)
			admin.Post("/admin/review/{listingID}/approve", h.handleApprove)
			admin.Post("/admin/review/{listingID}/reject", h.handleReject)
			admin.Get("/admin/listings", h.handleList)
			admin.Get("/admin/listings/{listingID}", h.handleGet)
		})
	})
}

type submitRequest struct {
	SellerID    string   `json:"seller_id"`
	OutfitName  string   `json:"outfit_name"`
	Brand       string   `json:"brand"`
	Size        string   `json:"size"`
	Color       string   `json:"color"`
	PriceCents  int64    `json:"price_cents"`
	Condition   string   `json:"condition"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	sellerID, err := id.ParseSellerID(req.SellerID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	listing, err := h.review.Submit(ctx, service.SubmitListingRequest{
		SellerID:    sellerID,
		OutfitName:  req.OutfitName,
		Brand:       req.Brand,
		Size:        req.Size,
		Color:       req.Color,
		PriceCents:  req.PriceCents,
		Condition:   req.Condition,
		Description: req.Description,
		Images:      req.Images,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "submit listing", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, listing)
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.review.Current(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "load current review item", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleSkip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.review.Skip(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "skip review item", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listingID, err := id.ParseListingID(chi.URLParam(r, "listingID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	listing, err := h.review.Approve(ctx, listingID)
	if err != nil {
		h.writeServiceError(ctx, w, "approve listing", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listingID, err := id.ParseListingID(chi.URLParam(r, "listingID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req rejectRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	listing, err := h.review.Reject(ctx, listingID, req.Reason)
	if err != nil {
		h.writeServiceError(ctx, w, "reject listing", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pending, view, err := h.review.Queue(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "load review queue", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"listings": pending,
		"position": view.Position,
		"total":    view.Total,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listings, err := h.review.List(ctx, r.URL.Query().Get("status"))
	if err != nil {
		h.writeServiceError(ctx, w, "list listings", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"listings": listings})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listingID, err := id.ParseListingID(chi.URLParam(r, "listingID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	listing, err := h.review.Get(ctx, listingID)
	if err != nil {
		h.writeServiceError(ctx, w, "get listing", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, listing)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, action string, err error) {
	requestID := middleware.GetRequestID(ctx)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "failed to "+action,
			"request_id", requestID,
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, "rejected "+action+" request",
			"request_id", requestID,
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
