package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType is the direction of a manual stock adjustment. The set is
// closed: quantity always carries the magnitude, type carries the sign.
type MovementType string

const (
	PositiveAdjustment MovementType = "positive_adjustment"
	NegativeAdjustment MovementType = "negative_adjustment"
)

// IsValid checks if the movement type is one of the known variants
func (t MovementType) IsValid() bool {
	switch t {
	case PositiveAdjustment, NegativeAdjustment:
		return true
	default:
		return false
	}
}

// String returns the string representation of the movement type
func (t MovementType) String() string {
	return string(t)
}

// Sign returns +1 for positive adjustments and -1 for negative ones
func (t MovementType) Sign() int {
	if t == NegativeAdjustment {
		return -1
	}
	return 1
}

// Movement is the engine's view of a stock adjustment record
type Movement struct {
	ID        string          `json:"id"`
	ItemID    string          `json:"item_id"`
	Type      MovementType    `json:"movement_type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason"`
	CreatedAt time.Time       `json:"created_at"`
	Active    bool            `json:"active"`
}

// UnknownItemName is the display name used for movements whose item no
// longer resolves in the catalog.
const UnknownItemName = "Unknown item"

// MovementLine is a movement enriched with its resolved item name
type MovementLine struct {
	Movement
	ItemName string `json:"item_name"`
}

// MovementSummary aggregates one day's stock adjustments
type MovementSummary struct {
	Movements     []Movement      `json:"movements"`
	PositiveTotal decimal.Decimal `json:"positive_total"`
	NegativeTotal decimal.Decimal `json:"negative_total"`
	NetTotal      decimal.Decimal `json:"net_total"`
	Anomaly       bool            `json:"anomaly"`
}

// SummarizeDay aggregates the active movements that fall on the same
// calendar date as the reference time. Timezone normalization is the
// caller's responsibility; dates are compared by their date components.
// The anomaly flag signals more loss than gain in the window and is
// informational, not an error.
func SummarizeDay(movements []Movement, referenceDate time.Time) MovementSummary {
	summary := MovementSummary{
		Movements:     make([]Movement, 0, len(movements)),
		PositiveTotal: decimal.Zero,
		NegativeTotal: decimal.Zero,
	}

	for _, m := range movements {
		if !m.Active || !sameDate(m.CreatedAt, referenceDate) {
			continue
		}

		summary.Movements = append(summary.Movements, m)

		switch m.Type {
		case PositiveAdjustment:
			summary.PositiveTotal = summary.PositiveTotal.Add(m.Quantity)
		case NegativeAdjustment:
			summary.NegativeTotal = summary.NegativeTotal.Add(m.Quantity)
		}
	}

	sort.SliceStable(summary.Movements, func(i, j int) bool {
		return summary.Movements[i].CreatedAt.Before(summary.Movements[j].CreatedAt)
	})

	summary.NetTotal = summary.PositiveTotal.Sub(summary.NegativeTotal)
	summary.Anomaly = summary.NegativeTotal.GreaterThan(summary.PositiveTotal)

	return summary
}

// WithItemNames resolves each movement's item ID to a display name using
// the supplied catalog. Movements referencing a missing item get the
// UnknownItemName placeholder instead of failing the aggregation.
func WithItemNames(movements []Movement, items []Item) []MovementLine {
	names := make(map[string]string, len(items))
	for _, item := range items {
		names[item.ID] = item.Name
	}

	lines := make([]MovementLine, len(movements))
	for i, m := range movements {
		name, ok := names[m.ItemID]
		if !ok {
			name = UnknownItemName
		}
		lines[i] = MovementLine{Movement: m, ItemName: name}
	}

	return lines
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
