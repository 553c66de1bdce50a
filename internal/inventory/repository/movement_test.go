package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larderhq/larder-backend/internal/inventory/engine"
	"github.com/larderhq/larder-backend/internal/inventory/repository"
	"github.com/larderhq/larder-backend/pkg/errors"
)

func createTestMovement(t *testing.T, ctx context.Context, repo *repository.MovementRepository, itemID, mtype, qty string) *repository.StockMovement {
	t.Helper()
	movement := &repository.StockMovement{
		ItemID:       itemID,
		MovementType: mtype,
		Quantity:     decimal.RequireFromString(qty),
		Reason:       strPtr("count correction"),
		IsActive:     true,
	}
	err := repo.Create(ctx, movement)
	require.NoError(t, err)
	return movement
}

func TestMovementRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	itemRepo := repository.NewItemRepository(suite.DB)
	movRepo := repository.NewMovementRepository(suite.DB)

	item := createTestItem(t, ctx, itemRepo, "Olive oil")

	movement := &repository.StockMovement{
		ItemID:       item.ID,
		MovementType: string(engine.NegativeAdjustment),
		Quantity:     decimal.RequireFromString("1.5"),
		Reason:       strPtr("spillage"),
		PerformedBy:  strPtr("kitchen-lead"),
		IsActive:     true,
	}
	require.NoError(t, movRepo.Create(ctx, movement))
	assert.NotEmpty(t, movement.ID)
	assert.False(t, movement.CreatedAt.IsZero())

	got, err := movRepo.GetByID(ctx, movement.ID)
	require.NoError(t, err)
	assert.Equal(t, string(engine.NegativeAdjustment), got.MovementType)
	assert.True(t, got.Quantity.Equal(decimal.RequireFromString("1.5")))
	require.NotNil(t, got.Reason)
	assert.Equal(t, "spillage", *got.Reason)
}

func TestMovementRepository_ListByDay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	itemRepo := repository.NewItemRepository(suite.DB)
	movRepo := repository.NewMovementRepository(suite.DB)

	item := createTestItem(t, ctx, itemRepo, "Flour")

	first := createTestMovement(t, ctx, movRepo, item.ID, string(engine.PositiveAdjustment), "10")
	second := createTestMovement(t, ctx, movRepo, item.ID, string(engine.NegativeAdjustment), "4")

	today, err := movRepo.ListByDay(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, today, 2)
	assert.Equal(t, first.ID, today[0].ID, "oldest first")
	assert.Equal(t, second.ID, today[1].ID)

	yesterday, err := movRepo.ListByDay(ctx, time.Now().UTC().AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Empty(t, yesterday)
}

func TestMovementRepository_ListByDay_ExcludesReversed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	itemRepo := repository.NewItemRepository(suite.DB)
	movRepo := repository.NewMovementRepository(suite.DB)

	item := createTestItem(t, ctx, itemRepo, "Sugar")

	kept := createTestMovement(t, ctx, movRepo, item.ID, string(engine.PositiveAdjustment), "3")
	reversed := createTestMovement(t, ctx, movRepo, item.ID, string(engine.NegativeAdjustment), "8")
	require.NoError(t, movRepo.Deactivate(ctx, reversed.ID))

	today, err := movRepo.ListByDay(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, kept.ID, today[0].ID)
}

func TestMovementRepository_Deactivate_Twice(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	itemRepo := repository.NewItemRepository(suite.DB)
	movRepo := repository.NewMovementRepository(suite.DB)

	item := createTestItem(t, ctx, itemRepo, "Salt")
	movement := createTestMovement(t, ctx, movRepo, item.ID, string(engine.PositiveAdjustment), "1")

	require.NoError(t, movRepo.Deactivate(ctx, movement.ID))
	err := movRepo.Deactivate(ctx, movement.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound), "reversing twice reports not found")
}

func TestMovementRepository_ListByItem(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	suite.Reset(t, ctx)

	itemRepo := repository.NewItemRepository(suite.DB)
	movRepo := repository.NewMovementRepository(suite.DB)

	item := createTestItem(t, ctx, itemRepo, "Rice")
	other := createTestItem(t, ctx, itemRepo, "Beans")

	createTestMovement(t, ctx, movRepo, item.ID, string(engine.PositiveAdjustment), "2")
	createTestMovement(t, ctx, movRepo, item.ID, string(engine.NegativeAdjustment), "1")
	createTestMovement(t, ctx, movRepo, other.ID, string(engine.PositiveAdjustment), "9")

	movements, err := movRepo.ListByItem(ctx, item.ID, 10)
	require.NoError(t, err)
	assert.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, item.ID, m.ItemID)
	}
}
