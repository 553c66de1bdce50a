package handler

import (
	"net/http"

	"github.com/larderhq/larder-backend/internal/inventory/service"
	"github.com/larderhq/larder-backend/pkg/httputil"
	"github.com/larderhq/larder-backend/pkg/logger"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc *service.InventoryService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: svc,
		logger:  log,
	}
}

// Get returns the dashboard read model: catalog valuation counts plus
// today's movement totals and recent movements
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.GetDashboard(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, metrics)
}

// Stats returns the full catalog valuation with per-item detail
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.GetCatalogValuation(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, catalog)
}
