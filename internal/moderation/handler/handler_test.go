package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restyle/internal/moderation/models"
	"restyle/internal/moderation/service"
	"restyle/internal/moderation/store"
	"restyle/internal/platform/logger"
	"restyle/internal/platform/metrics"
	"restyle/internal/platform/middleware"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*middleware.AdminClaims, error) {
	if token != "valid-admin-token" {
		return nil, fmt.Errorf("unknown token")
	}
	return &middleware.AdminClaims{AdminID: "admin-1", Role: "admin"}, nil
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	svc := service.New(store.NewMemory(), store.NewMemoryCursor(),
		service.WithLogger(logger.New()))
	h := New(svc, logger.New(), metrics.New(), stubValidator{})
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func submitListing(t *testing.T, r http.Handler, name string) models.Listing {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/listings", "", map[string]any{
		"seller_id":   uuid.NewString(),
		"outfit_name": name,
		"brand":       "Patagonia",
		"price_cents": 7800,
		"condition":   "like new",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var listing models.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	return listing
}

func TestSubmitListing(t *testing.T) {
	r := newTestRouter(t)

	t.Run("creates pending listing", func(t *testing.T) {
		listing := submitListing(t, r, "Fleece Pullover")
		assert.Equal(t, models.ListingPending, listing.Status)
	})

	t.Run("rejects malformed seller id", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/listings", "", map[string]any{
			"seller_id":   "not-a-uuid",
			"outfit_name": "Fleece Pullover",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects blank outfit name", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/listings", "", map[string]any{
			"seller_id": uuid.NewString(),
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestReviewAuth(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/admin/review/current", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReviewFlow(t *testing.T) {
	r := newTestRouter(t)
	first := submitListing(t, r, "Denim Jacket")
	second := submitListing(t, r, "Wool Coat")

	t.Run("current shows the queue head", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/admin/review/current", "valid-admin-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var view service.QueueView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		require.NotNil(t, view.Current)
		assert.Equal(t, first.ID, view.Current.ID)
		assert.Equal(t, 1, view.Position)
		assert.Equal(t, 2, view.Total)
	})

	t.Run("approving a non-current listing conflicts", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/admin/review/"+second.ID.String()+"/approve",
			"valid-admin-token", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("reject without reason is unprocessable", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/admin/review/"+first.ID.String()+"/reject",
			"valid-admin-token", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("reject current with reason", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/admin/review/"+first.ID.String()+"/reject",
			"valid-admin-token", map[string]string{"reason": "stained fabric"})
		require.Equal(t, http.StatusOK, rec.Code)

		var got models.Listing
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, models.ListingRejected, got.Status)
		assert.Equal(t, "stained fabric", got.RejectionReason)
	})

	t.Run("approve the remaining listing", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/admin/review/"+second.ID.String()+"/approve",
			"valid-admin-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got models.Listing
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, models.ListingApproved, got.Status)
	})

	t.Run("drained queue reports empty", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/admin/review/current", "valid-admin-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var view service.QueueView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Nil(t, view.Current)
		assert.Zero(t, view.Total)
	})
}

func TestSkipEndpoint(t *testing.T) {
	r := newTestRouter(t)
	submitListing(t, r, "Denim Jacket")
	second := submitListing(t, r, "Wool Coat")

	rec := doJSON(t, r, http.MethodPost, "/admin/review/skip", "valid-admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view service.QueueView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.NotNil(t, view.Current)
	assert.Equal(t, second.ID, view.Current.ID)
	assert.Equal(t, 2, view.Position)

	// Skip at the tail stays on the tail.
	rec = doJSON(t, r, http.MethodPost, "/admin/review/skip", "valid-admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, second.ID, view.Current.ID)
}

func TestQueueAndListEndpoints(t *testing.T) {
	r := newTestRouter(t)
	first := submitListing(t, r, "Denim Jacket")
	submitListing(t, r, "Wool Coat")

	t.Run("queue lists pending with cursor", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/admin/review/queue", "valid-admin-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Listings []models.Listing `json:"listings"`
			Position int              `json:"position"`
			Total    int              `json:"total"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Listings, 2)
		assert.Equal(t, 1, resp.Position)
		assert.Equal(t, 2, resp.Total)
	})

	t.Run("get one listing", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/admin/listings/"+first.ID.String(), "valid-admin-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got models.Listing
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, first.ID, got.ID)
	})

	t.Run("get unknown listing", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/admin/listings/"+uuid.NewString(), "valid-admin-token", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("filter by status", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/admin/listings?status=pending", "valid-admin-token", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Listings []models.Listing `json:"listings"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Listings, 2)
	})
}
