package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/larderhq/larder-backend/internal/inventory/repository"
	"github.com/larderhq/larder-backend/internal/inventory/service"
	"github.com/larderhq/larder-backend/pkg/errors"
	"github.com/larderhq/larder-backend/pkg/httputil"
	"github.com/larderhq/larder-backend/pkg/logger"
)

// BatchHandler handles batch endpoints
type BatchHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(svc *service.InventoryService, log *logger.Logger) *BatchHandler {
	return &BatchHandler{
		service: svc,
		logger:  log,
	}
}

// ListByItem lists active batches for an item, earliest expiry first
func (h *BatchHandler) ListByItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")

	batches, err := h.service.ListBatchesByItem(r.Context(), itemID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batches)
}

// Get gets a batch by ID
func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	batch, err := h.service.GetBatch(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batch)
}

// Create records a replenishment batch for an item
func (h *BatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")

	var batch repository.InventoryBatch
	if err := httputil.DecodeJSON(r, &batch); err != nil {
		httputil.Error(w, err)
		return
	}

	if !batch.Quantity.IsPositive() {
		httputil.Error(w, errors.BadRequest("batch quantity must be positive"))
		return
	}
	if batch.CostPerUnit.LessThan(decimal.Zero) {
		httputil.Error(w, errors.BadRequest("cost per unit cannot be negative"))
		return
	}
	if batch.ExpiryDate.IsZero() {
		httputil.Error(w, errors.BadRequest("expiry date is required"))
		return
	}

	batch.ItemID = itemID
	batch.IsActive = true
	if batch.ReceivedDate.IsZero() {
		batch.ReceivedDate = time.Now().UTC()
	}

	if err := h.service.CreateBatch(r.Context(), &batch); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, batch)
}

// Update updates a batch
func (h *BatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var batch repository.InventoryBatch
	if err := httputil.DecodeJSON(r, &batch); err != nil {
		httputil.Error(w, err)
		return
	}

	batch.ID = id
	if err := h.service.UpdateBatch(r.Context(), &batch); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batch)
}

// Delete deactivates a batch
func (h *BatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteBatch(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
