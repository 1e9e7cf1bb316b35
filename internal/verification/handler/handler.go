// Package handler exposes the seller verification endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"restyle/internal/platform/metrics"
	"restyle/internal/platform/middleware"
	"restyle/internal/transport/http/shared"
	"restyle/internal/verification/models"
	"restyle/internal/verification/service"
	id "restyle/pkg/domain"
	dErrors "restyle/pkg/domain-errors"
)

// Service is the verification surface the handler depends on.
type Service interface {
	Register(ctx context.Context, req service.RegisterAccountRequest) (*models.SellerAccount, error)
	Approve(ctx context.Context, sellerID id.SellerID, notes string) (*models.SellerAccount, error)
	Reject(ctx context.Context, sellerID id.SellerID, notes string) (*models.SellerAccount, error)
	Suspend(ctx context.Context, sellerID id.SellerID, reason string) (*models.SellerAccount, error)
	Reinstate(ctx context.Context, sellerID id.SellerID) (*models.SellerAccount, error)
	Get(ctx context.Context, sellerID id.SellerID) (*models.SellerAccount, error)
	List(ctx context.Context, statusFilter string) ([]*models.SellerAccount, error)
}

// Handler handles seller account endpoints.
type Handler struct {
	logger    *slog.Logger
	sellers   Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a verification Handler.
func New(sellers Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		sellers:   sellers,
		metrics:   m,
		validator: validator,
	}
}

// Register mounts the seller routes. Registration is open to the account
// collaborator; everything under /admin requires an admin token.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(base chi.Router) {
		base.Use(middleware.Recovery(h.logger))
		base.Use(middleware.RequestID)
		base.Use(middleware.RequestTime)
		base.Use(middleware.Logger(h.logger))
		base.Use(middleware.Timeout(30 * time.Second))
		base.Use(middleware.ContentTypeJSON)
		base.Use(middleware.LatencyMiddleware(h.metrics))

		base.Post("/sellers", h.handleRegister)

		base.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireAdmin(h.validator, h.logger))
			admin.Get("/admin/sellers", h.handleList)
			admin.Get("/admin/sellers/{sellerID}", h.handleGet)
			admin.Post("/admin/sellers/{sellerID}/approve", h.handleApprove)
			admin.Post("/admin/sellers/{sellerID}/reject", h.handleReject)
			admin.Post("/admin/sellers/{sellerID}/suspend", h.handleSuspend)
			admin.Post("/admin/sellers/{sellerID}/reinstate", h.handleReinstate)
		})
	})
}

type registerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	BrandName string `json:"brand_name"`
}

type decisionRequest struct {
	Notes string `json:"notes"`
}

type suspendRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	account, err := h.sellers.Register(ctx, service.RegisterAccountRequest{
		Name:      req.Name,
		Email:     req.Email,
		BrandName: req.BrandName,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "register seller", err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, account)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accounts, err := h.sellers.List(ctx, r.URL.Query().Get("status"))
	if err != nil {
		h.writeServiceError(ctx, w, "list sellers", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"sellers": accounts})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sellerID, err := id.ParseSellerID(chi.URLParam(r, "sellerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	account, err := h.sellers.Get(ctx, sellerID)
	if err != nil {
		h.writeServiceError(ctx, w, "get seller", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, "approve seller", h.sellers.Approve)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.handleDecision(w, r, "reject seller", h.sellers.Reject)
}

// handleDecision is the shared shape of approve and reject: parse the id,
// decode optional notes, delegate.
func (h *Handler) handleDecision(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	decide func(ctx context.Context, sellerID id.SellerID, notes string) (*models.SellerAccount, error),
) {
	ctx := r.Context()

	sellerID, err := id.ParseSellerID(chi.URLParam(r, "sellerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req decisionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	account, err := decide(ctx, sellerID, req.Notes)
	if err != nil {
		h.writeServiceError(ctx, w, action, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) handleSuspend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sellerID, err := id.ParseSellerID(chi.URLParam(r, "sellerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req suspendRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	account, err := h.sellers.Suspend(ctx, sellerID, req.Reason)
	if err != nil {
		h.writeServiceError(ctx, w, "suspend seller", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, account)
}

func (h *Handler) handleReinstate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sellerID, err := id.ParseSellerID(chi.URLParam(r, "sellerID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	account, err := h.sellers.Reinstate(ctx, sellerID)
	if err != nil {
		h.writeServiceError(ctx, w, "reinstate seller", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, account)
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
