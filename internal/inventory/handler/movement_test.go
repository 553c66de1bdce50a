package handler_test

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larderhq/larder-backend/internal/inventory/handler"
	"github.com/larderhq/larder-backend/internal/inventory/repository"
	"github.com/larderhq/larder-backend/internal/inventory/service"
	"github.com/larderhq/larder-backend/pkg/logger"
	"github.com/larderhq/larder-backend/pkg/testutil"
)

var suite *testutil.IntegrationSuite

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	var err error
	suite, err = testutil.NewIntegrationSuite(ctx)
	if err != nil {
		log.Fatalf("failed to create integration suite: %v", err)
	}
	defer testutil.TerminateContainer(ctx)

	os.Exit(m.Run())
}

func newTestService() *service.InventoryService {
	return service.NewInventoryService(
		repository.NewItemRepository(suite.DB),
		repository.NewBatchRepository(suite.DB),
		repository.NewMovementRepository(suite.DB),
		repository.NewAlertRepository(suite.DB),
		nil, // no event publisher needed for handler tests
		logger.New("test", "test"),
	)
}

func newMovementRouter() *chi.Mux {
	h := handler.NewMovementHandler(newTestService(), logger.New("test", "test"))
	r := chi.NewRouter()
	r.Get("/api/v1/inventory/movements", h.DaySummary)
	r.Post("/api/v1/inventory/movements", h.Create)
	r.Delete("/api/v1/inventory/movements/{id}", h.Reverse)
	return r
}

func createHandlerTestItem(t *testing.T, ctx context.Context, name string) *repository.InventoryItem {
	t.Helper()
	itemRepo := repository.NewItemRepository(suite.DB)
	item := &repository.InventoryItem{
		Name:     name,
		Category: "produce",
		Unit:     "kg",
		MinStock: decimal.NewFromInt(1),
		IsActive: true,
	}
	require.NoError(t, itemRepo.Create(ctx, item))
	return item
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func TestMovementHandler_Create_RejectsUnknownType(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	item := createHandlerTestItem(t, ctx, "Olive oil")

	body := `{"item_id":"` + item.ID + `","movement_type":"waste","quantity":"2"}`
	req := httptest.NewRequest("POST", "/api/v1/inventory/movements", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newMovementRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestMovementHandler_Create_RejectsNonPositiveQuantity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	item := createHandlerTestItem(t, ctx, "Butter")

	body := `{"item_id":"` + item.ID + `","movement_type":"positive_adjustment","quantity":"0"}`
	req := httptest.NewRequest("POST", "/api/v1/inventory/movements", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newMovementRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMovementHandler_CreateAndReverse(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	item := createHandlerTestItem(t, ctx, "Flour")
	router := newMovementRouter()

	body := `{"item_id":"` + item.ID + `","movement_type":"negative_adjustment","quantity":"2.5","reason":"spoiled"}`
	req := httptest.NewRequest("POST", "/api/v1/inventory/movements", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	var created repository.StockMovement
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Quantity.Equal(decimal.RequireFromString("2.5")))

	// Reverse it
	req = httptest.NewRequest("DELETE", "/api/v1/inventory/movements/"+created.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Reversing again conflicts
	req = httptest.NewRequest("DELETE", "/api/v1/inventory/movements/"+created.ID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMovementHandler_DaySummary_BadDate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	req := httptest.NewRequest("GET", "/api/v1/inventory/movements?date=31-08-2026", nil)
	rec := httptest.NewRecorder()
	newMovementRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMovementHandler_DaySummary(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	item := createHandlerTestItem(t, ctx, "Sugar")
	router := newMovementRouter()

	for _, body := range []string{
		`{"item_id":"` + item.ID + `","movement_type":"positive_adjustment","quantity":"10"}`,
		`{"item_id":"` + item.ID + `","movement_type":"negative_adjustment","quantity":"15"}`,
	} {
		req := httptest.NewRequest("POST", "/api/v1/inventory/movements", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	today := time.Now().UTC().Format("2006-01-02")
	req := httptest.NewRequest("GET", "/api/v1/inventory/movements?date="+today, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	var summary struct {
		PositiveTotal decimal.Decimal `json:"positive_total"`
		NegativeTotal decimal.Decimal `json:"negative_total"`
		NetTotal      decimal.Decimal `json:"net_total"`
		Anomaly       bool            `json:"anomaly"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.True(t, summary.PositiveTotal.Equal(decimal.NewFromInt(10)))
	assert.True(t, summary.NegativeTotal.Equal(decimal.NewFromInt(15)))
	assert.True(t, summary.NetTotal.Equal(decimal.NewFromInt(-5)))
	assert.True(t, summary.Anomaly)
}
