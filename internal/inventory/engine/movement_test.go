package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larderhq/larder-backend/internal/inventory/engine"
)

func testMovement(id, itemID string, mtype engine.MovementType, qty string, at time.Time) engine.Movement {
	return engine.Movement{
		ID:        id,
		ItemID:    itemID,
		Type:      mtype,
		Quantity:  dec(qty),
		Reason:    "count correction",
		CreatedAt: at,
		Active:    true,
	}
}

func TestMovementType_IsValid(t *testing.T) {
	assert.True(t, engine.PositiveAdjustment.IsValid())
	assert.True(t, engine.NegativeAdjustment.IsValid())
	assert.False(t, engine.MovementType("waste").IsValid())
	assert.False(t, engine.MovementType("").IsValid())
}

func TestMovementType_Sign(t *testing.T) {
	assert.Equal(t, 1, engine.PositiveAdjustment.Sign())
	assert.Equal(t, -1, engine.NegativeAdjustment.Sign())
}

func TestSummarizeDay_AnomalyWhenLossExceedsGain(t *testing.T) {
	movements := []engine.Movement{
		testMovement("mov-1", "itm-1", engine.PositiveAdjustment, "10", reference.Add(9*time.Hour)),
		testMovement("mov-2", "itm-1", engine.NegativeAdjustment, "15", reference.Add(14*time.Hour)),
	}

	s := engine.SummarizeDay(movements, reference)

	assert.True(t, s.PositiveTotal.Equal(dec("10")))
	assert.True(t, s.NegativeTotal.Equal(dec("15")))
	assert.True(t, s.NetTotal.Equal(dec("-5")))
	assert.True(t, s.Anomaly)
}

func TestSummarizeDay_NoAnomalyWhenGainDominates(t *testing.T) {
	movements := []engine.Movement{
		testMovement("mov-1", "itm-1", engine.PositiveAdjustment, "20", reference.Add(9*time.Hour)),
		testMovement("mov-2", "itm-1", engine.NegativeAdjustment, "5", reference.Add(14*time.Hour)),
	}

	s := engine.SummarizeDay(movements, reference)

	assert.True(t, s.NetTotal.Equal(dec("15")))
	assert.False(t, s.Anomaly)
}

func TestSummarizeDay_FiltersWindowAndInactive(t *testing.T) {
	reversed := testMovement("mov-3", "itm-1", engine.NegativeAdjustment, "50", reference.Add(10*time.Hour))
	reversed.Active = false

	movements := []engine.Movement{
		testMovement("mov-1", "itm-1", engine.PositiveAdjustment, "5", reference.Add(8*time.Hour)),
		testMovement("mov-2", "itm-1", engine.PositiveAdjustment, "7", reference.AddDate(0, 0, -1)),
		reversed,
	}

	s := engine.SummarizeDay(movements, reference)

	require.Len(t, s.Movements, 1)
	assert.Equal(t, "mov-1", s.Movements[0].ID)
	assert.True(t, s.PositiveTotal.Equal(dec("5")))
	assert.True(t, s.NegativeTotal.IsZero())
}

func TestSummarizeDay_OrdersByCreatedAtAscending(t *testing.T) {
	movements := []engine.Movement{
		testMovement("mov-evening", "itm-1", engine.PositiveAdjustment, "1", reference.Add(20*time.Hour)),
		testMovement("mov-morning", "itm-1", engine.PositiveAdjustment, "1", reference.Add(7*time.Hour)),
		testMovement("mov-noon", "itm-1", engine.PositiveAdjustment, "1", reference.Add(12*time.Hour)),
	}

	s := engine.SummarizeDay(movements, reference)

	require.Len(t, s.Movements, 3)
	assert.Equal(t, "mov-morning", s.Movements[0].ID)
	assert.Equal(t, "mov-noon", s.Movements[1].ID)
	assert.Equal(t, "mov-evening", s.Movements[2].ID)
}

func TestSummarizeDay_IsIdempotent(t *testing.T) {
	movements := []engine.Movement{
		testMovement("mov-1", "itm-1", engine.PositiveAdjustment, "3.5", reference.Add(9*time.Hour)),
		testMovement("mov-2", "itm-2", engine.NegativeAdjustment, "1.25", reference.Add(11*time.Hour)),
	}

	first := engine.SummarizeDay(movements, reference)
	second := engine.SummarizeDay(movements, reference)

	assert.True(t, first.PositiveTotal.Equal(second.PositiveTotal))
	assert.True(t, first.NegativeTotal.Equal(second.NegativeTotal))
	assert.True(t, first.NetTotal.Equal(second.NetTotal))
	assert.Equal(t, first.Anomaly, second.Anomaly)
	assert.Equal(t, len(first.Movements), len(second.Movements))
}

func TestWithItemNames_ResolvesAndFallsBack(t *testing.T) {
	items := []engine.Item{
		testItem("itm-1", "Olive oil", "0"),
	}
	movements := []engine.Movement{
		testMovement("mov-1", "itm-1", engine.PositiveAdjustment, "2", reference),
		testMovement("mov-2", "itm-gone", engine.NegativeAdjustment, "1", reference),
	}

	lines := engine.WithItemNames(movements, items)

	require.Len(t, lines, 2)
	assert.Equal(t, "Olive oil", lines[0].ItemName)
	assert.Equal(t, engine.UnknownItemName, lines[1].ItemName)
}
