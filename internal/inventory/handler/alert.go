package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/larderhq/larder-backend/internal/inventory/service"
	"github.com/larderhq/larder-backend/pkg/httputil"
	"github.com/larderhq/larder-backend/pkg/logger"
)

// AlertHandler handles alert endpoints
type AlertHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(svc *service.InventoryService, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		service: svc,
		logger:  log,
	}
}

// List lists alerts, unacknowledged first.
// Pass ?include_acknowledged=true to include acknowledged ones.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	includeAcknowledged := r.URL.Query().Get("include_acknowledged") == "true"

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	alerts, err := h.service.ListAlerts(r.Context(), includeAcknowledged, limit)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, alerts)
}

// Acknowledge marks an alert as acknowledged
func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.AcknowledgeAlert(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
