package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Item is the engine's view of an inventory item
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	MinStock decimal.Decimal `json:"min_stock"`
	Active   bool            `json:"active"`
}

// Batch is the engine's view of a replenishment batch
type Batch struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	ExpiryDate  time.Time       `json:"expiry_date"`
	Active      bool            `json:"active"`
}

// ItemValuation is the per-item result of FEFO batch costing
type ItemValuation struct {
	ItemID         string          `json:"item_id"`
	ItemName       string          `json:"item_name"`
	OnHandQuantity decimal.Decimal `json:"on_hand_quantity"`
	TotalValue     decimal.Decimal `json:"total_value"`
	AverageCost    decimal.Decimal `json:"average_cost"`
	ExpiryStatus   *ExpiryStatus   `json:"expiry_status,omitempty"`
	LowStock       bool            `json:"low_stock"`
	Batches        []Batch         `json:"batches"`
}

// ValueItem values an item's stock from its batches.
//
// Only active batches with remaining quantity participate. Batches are
// ordered by expiry date ascending (first-expired-first-out), which fixes
// the conceptual draw-down order; valuation itself aggregates the remaining
// quantities. The item's expiry status is the worst status among its
// eligible batches and is absent when no batch is eligible.
func ValueItem(item Item, batches []Batch, referenceDate time.Time) ItemValuation {
	eligible := make([]Batch, 0, len(batches))
	for _, b := range batches {
		if b.Active && b.Quantity.IsPositive() {
			eligible = append(eligible, b)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].ExpiryDate.Before(eligible[j].ExpiryDate)
	})

	result := ItemValuation{
		ItemID:         item.ID,
		ItemName:       item.Name,
		OnHandQuantity: decimal.Zero,
		TotalValue:     decimal.Zero,
		AverageCost:    decimal.Zero,
		Batches:        eligible,
	}

	var worst *ExpiryStatus
	for _, b := range eligible {
		result.OnHandQuantity = result.OnHandQuantity.Add(b.Quantity)
		result.TotalValue = result.TotalValue.Add(b.Quantity.Mul(b.CostPerUnit))

		status := Classify(b.ExpiryDate, referenceDate)
		if worst == nil || status.Category.Worse(worst.Category) {
			worst = &status
		}
	}

	if result.OnHandQuantity.IsPositive() {
		result.AverageCost = result.TotalValue.Div(result.OnHandQuantity)
	}

	result.ExpiryStatus = worst
	result.LowStock = result.OnHandQuantity.LessThanOrEqual(item.MinStock)

	return result
}

// CatalogValuation aggregates item valuations across the whole catalog.
// Each item lands in at most one expiry bucket, the worst one that applies.
type CatalogValuation struct {
	TotalItems    int             `json:"total_items"`
	TotalValue    decimal.Decimal `json:"total_value"`
	ExpiredItems  int             `json:"expired_items"`
	CriticalItems int             `json:"critical_items"`
	SoonItems     int             `json:"soon_items"`
	LowStockItems int             `json:"low_stock_items"`
	Items         []ItemValuation `json:"items"`
}

// ValueCatalog values every active item in the catalog against the supplied
// batch snapshot. Inactive items are skipped entirely.
func ValueCatalog(items []Item, batches []Batch, referenceDate time.Time) CatalogValuation {
	batchesByItem := make(map[string][]Batch, len(items))
	for _, b := range batches {
		batchesByItem[b.ItemID] = append(batchesByItem[b.ItemID], b)
	}

	result := CatalogValuation{
		TotalValue: decimal.Zero,
		Items:      make([]ItemValuation, 0, len(items)),
	}

	for _, item := range items {
		if !item.Active {
			continue
		}

		valuation := ValueItem(item, batchesByItem[item.ID], referenceDate)

		result.TotalItems++
		result.TotalValue = result.TotalValue.Add(valuation.TotalValue)

		if valuation.ExpiryStatus != nil {
			switch valuation.ExpiryStatus.Category {
			case ExpiryExpired:
				result.ExpiredItems++
			case ExpiryCritical:
				result.CriticalItems++
			case ExpirySoon:
				result.SoonItems++
			}
		}

		if valuation.LowStock {
			result.LowStockItems++
		}

		result.Items = append(result.Items, valuation)
	}

	return result
}
