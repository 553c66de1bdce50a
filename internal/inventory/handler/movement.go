package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/larderhq/larder-backend/internal/inventory/repository"
	"github.com/larderhq/larder-backend/internal/inventory/service"
	"github.com/larderhq/larder-backend/pkg/errors"
	"github.com/larderhq/larder-backend/pkg/httputil"
	"github.com/larderhq/larder-backend/pkg/logger"
)

// MovementHandler handles stock movement endpoints
type MovementHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewMovementHandler creates a new movement handler
func NewMovementHandler(svc *service.InventoryService, log *logger.Logger) *MovementHandler {
	return &MovementHandler{
		service: svc,
		logger:  log,
	}
}

type recordMovementRequest struct {
	ItemID       string          `json:"item_id" validate:"required,uuid"`
	MovementType string          `json:"movement_type" validate:"required,oneof=positive_adjustment negative_adjustment"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reason       *string         `json:"reason"`
	PerformedBy  *string         `json:"performed_by"`
}

// Create records a manual stock adjustment
func (h *MovementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recordMovementRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}
	if !req.Quantity.IsPositive() {
		httputil.Error(w, errors.BadRequest("movement quantity must be positive"))
		return
	}

	movement := repository.StockMovement{
		ItemID:       req.ItemID,
		MovementType: req.MovementType,
		Quantity:     req.Quantity,
		Reason:       req.Reason,
		PerformedBy:  req.PerformedBy,
	}

	if err := h.service.RecordMovement(r.Context(), &movement); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, movement)
}

// Get gets a movement by ID
func (h *MovementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	movement, err := h.service.GetMovement(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, movement)
}

// Reverse reverses a previously recorded movement
func (h *MovementHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.ReverseMovement(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// DaySummary aggregates one calendar day's movements.
// The day defaults to today and can be overridden with ?date=YYYY-MM-DD.
func (h *MovementHandler) DaySummary(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httputil.Error(w, errors.BadRequest("date must match the format 2006-01-02"))
			return
		}
		day = parsed
	}

	summary, err := h.service.GetDaySummary(r.Context(), day)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, summary)
}

// ListByItem lists movements for an item, newest first
func (h *MovementHandler) ListByItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	movements, err := h.service.ListMovementsByItem(r.Context(), itemID, limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, movements)
}
