package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardMetrics is the read model consumed by the dashboard endpoint.
// It combines catalog valuation with the reference day's movement stats.
type DashboardMetrics struct {
	TotalItems    int             `json:"total_items"`
	TotalValue    decimal.Decimal `json:"total_value"`
	ExpiredItems  int             `json:"expired_items"`
	CriticalItems int             `json:"critical_items"`
	SoonItems     int             `json:"soon_items"`
	LowStockItems int             `json:"low_stock_items"`

	PositiveTotal decimal.Decimal `json:"positive_total"`
	NegativeTotal decimal.Decimal `json:"negative_total"`
	NetTotal      decimal.Decimal `json:"net_total"`
	Anomaly       bool            `json:"anomaly"`

	RecentMovements []MovementLine `json:"recent_movements"`
}

// BuildDashboard assembles the dashboard read model from a snapshot of
// items, batches and movements. Pure composition of ValueCatalog and
// SummarizeDay; no logic of its own beyond field assembly. The snapshot
// must be self-consistent: items, batches and movements drawn from the
// same point in time.
func BuildDashboard(items []Item, batches []Batch, movements []Movement, referenceDate time.Time) DashboardMetrics {
	catalog := ValueCatalog(items, batches, referenceDate)
	day := SummarizeDay(movements, referenceDate)

	return DashboardMetrics{
		TotalItems:    catalog.TotalItems,
		TotalValue:    catalog.TotalValue,
		ExpiredItems:  catalog.ExpiredItems,
		CriticalItems: catalog.CriticalItems,
		SoonItems:     catalog.SoonItems,
		LowStockItems: catalog.LowStockItems,

		PositiveTotal: day.PositiveTotal,
		NegativeTotal: day.NegativeTotal,
		NetTotal:      day.NetTotal,
		Anomaly:       day.Anomaly,

		RecentMovements: WithItemNames(day.Movements, items),
	}
}
