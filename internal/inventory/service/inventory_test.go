package service_test

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larderhq/larder-backend/internal/inventory/engine"
	"github.com/larderhq/larder-backend/internal/inventory/repository"
	"github.com/larderhq/larder-backend/internal/inventory/service"
	"github.com/larderhq/larder-backend/pkg/errors"
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

// newService builds an inventory service against the suite database.
// The event publisher is nil; its methods are nil-safe no-ops.
func newService() *service.InventoryService {
	return service.NewInventoryService(
		repository.NewItemRepository(suite.DB),
		repository.NewBatchRepository(suite.DB),
		repository.NewMovementRepository(suite.DB),
		repository.NewAlertRepository(suite.DB),
		nil,
		suite.Logger,
	)
}

func seedItem(t *testing.T, ctx context.Context, svc *service.InventoryService, name string, minStock string) *repository.InventoryItem {
	t.Helper()
	item := &repository.InventoryItem{
		Name:     name,
		Category: "produce",
		Unit:     "kg",
		MinStock: decimal.RequireFromString(minStock),
		IsActive: true,
	}
	require.NoError(t, svc.CreateItem(ctx, item))
	return item
}

func seedBatch(t *testing.T, ctx context.Context, svc *service.InventoryService, itemID, qty, cost string, expiry time.Time) *repository.InventoryBatch {
	t.Helper()
	batch := &repository.InventoryBatch{
		ItemID:       itemID,
		Quantity:     decimal.RequireFromString(qty),
		CostPerUnit:  decimal.RequireFromString(cost),
		ExpiryDate:   expiry,
		ReceivedDate: time.Now().UTC(),
		IsActive:     true,
	}
	require.NoError(t, svc.CreateBatch(ctx, batch))
	return batch
}

func TestInventoryService_GetItem_Valuation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	svc := newService()
	now := time.Now().UTC()

	item := seedItem(t, ctx, svc, "Salmon", "10")
	seedBatch(t, ctx, svc, item.ID, "5", "2", now.AddDate(0, 0, 3))
	seedBatch(t, ctx, svc, item.ID, "8", "3", now.AddDate(0, 0, 40))

	got, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)

	assert.True(t, got.OnHandQuantity.Equal(decimal.RequireFromString("13")))
	assert.True(t, got.TotalValue.Equal(decimal.RequireFromString("34")))
	assert.False(t, got.LowStock)
	require.NotNil(t, got.ExpiryStatus)
	assert.Equal(t, engine.ExpiryCritical, got.ExpiryStatus.Category)
	assert.Len(t, got.Batches, 2)
}

func TestInventoryService_CreateBatch_UnknownItem(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	svc := newService()

	batch := &repository.InventoryBatch{
		ItemID:       "00000000-0000-0000-0000-000000000000",
		Quantity:     decimal.NewFromInt(1),
		CostPerUnit:  decimal.NewFromInt(1),
		ExpiryDate:   time.Now().UTC().AddDate(0, 0, 5),
		ReceivedDate: time.Now().UTC(),
		IsActive:     true,
	}
	err := svc.CreateBatch(ctx, batch)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestInventoryService_RecordMovement_RejectsInvalid(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	svc := newService()
	item := seedItem(t, ctx, svc, "Basil", "1")

	badType := &repository.StockMovement{
		ItemID:       item.ID,
		MovementType: "waste",
		Quantity:     decimal.NewFromInt(1),
	}
	err := svc.RecordMovement(ctx, badType)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	badQuantity := &repository.StockMovement{
		ItemID:       item.ID,
		MovementType: string(engine.NegativeAdjustment),
		Quantity:     decimal.NewFromInt(-3),
	}
	err = svc.RecordMovement(ctx, badQuantity)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestInventoryService_ReverseMovement(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	svc := newService()
	item := seedItem(t, ctx, svc, "Flour", "1")

	movement := &repository.StockMovement{
		ItemID:       item.ID,
		MovementType: string(engine.PositiveAdjustment),
		Quantity:     decimal.NewFromInt(10),
	}
	require.NoError(t, svc.RecordMovement(ctx, movement))

	require.NoError(t, svc.ReverseMovement(ctx, movement.ID))

	// The record survives but is excluded from aggregations
	got, err := svc.GetMovement(ctx, movement.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	summary, err := svc.GetDaySummary(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, summary.PositiveTotal.IsZero())

	// Reversing twice conflicts
	err = svc.ReverseMovement(ctx, movement.ID)
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestInventoryService_GetDashboard(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	svc := newService()
	now := time.Now().UTC()

	tomatoes := seedItem(t, ctx, svc, "Tomatoes", "10")
	basil := seedItem(t, ctx, svc, "Basil", "2")

	seedBatch(t, ctx, svc, tomatoes.ID, "5", "2", now.AddDate(0, 0, 3))
	seedBatch(t, ctx, svc, tomatoes.ID, "8", "3", now.AddDate(0, 0, 40))
	seedBatch(t, ctx, svc, basil.ID, "1", "4", now.AddDate(0, 0, -1))

	require.NoError(t, svc.RecordMovement(ctx, &repository.StockMovement{
		ItemID:       tomatoes.ID,
		MovementType: string(engine.PositiveAdjustment),
		Quantity:     decimal.NewFromInt(10),
	}))
	require.NoError(t, svc.RecordMovement(ctx, &repository.StockMovement{
		ItemID:       basil.ID,
		MovementType: string(engine.NegativeAdjustment),
		Quantity:     decimal.NewFromInt(15),
	}))

	metrics, err := svc.GetDashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, metrics.TotalItems)
	assert.True(t, metrics.TotalValue.Equal(decimal.RequireFromString("38")))
	assert.Equal(t, 1, metrics.ExpiredItems)
	assert.Equal(t, 1, metrics.CriticalItems)
	assert.Equal(t, 1, metrics.LowStockItems)

	assert.True(t, metrics.NetTotal.Equal(decimal.RequireFromString("-5")))
	assert.True(t, metrics.Anomaly)

	require.Len(t, metrics.RecentMovements, 2)
	assert.Equal(t, "Tomatoes", metrics.RecentMovements[0].ItemName)
}
