// Package engine implements the inventory valuation core: expiry
// classification, FEFO batch costing, stock movement aggregation and the
// dashboard summary built from them. Every function is a pure computation
// over a caller-supplied snapshot; the package holds no state and performs
// no I/O, so it is safe to call concurrently.
package engine

import (
	"math"
	"time"
)

// ExpiryCategory classifies a batch by remaining shelf life
type ExpiryCategory string

const (
	ExpiryExpired  ExpiryCategory = "expired"
	ExpiryCritical ExpiryCategory = "critical"
	ExpirySoon     ExpiryCategory = "soon"
	ExpiryGood     ExpiryCategory = "good"
)

// categoryRank orders categories from worst to best
var categoryRank = map[ExpiryCategory]int{
	ExpiryExpired:  0,
	ExpiryCritical: 1,
	ExpirySoon:     2,
	ExpiryGood:     3,
}

// Worse reports whether c is a worse (more urgent) category than other
func (c ExpiryCategory) Worse(other ExpiryCategory) bool {
	return categoryRank[c] < categoryRank[other]
}

// ExpiryStatus is the classification of a single expiry date against a
// reference date. For expired batches Days is the number of days since
// expiry; otherwise it is the number of days remaining.
type ExpiryStatus struct {
	Category ExpiryCategory `json:"category"`
	Days     int            `json:"days"`
}

// Classify buckets an expiry date relative to a reference date.
// Fractional days round up, so a batch expiring later the same day
// still counts as expiring today rather than already expired.
func Classify(expiryDate, referenceDate time.Time) ExpiryStatus {
	days := int(math.Ceil(expiryDate.Sub(referenceDate).Hours() / 24))

	switch {
	case days < 0:
		return ExpiryStatus{Category: ExpiryExpired, Days: -days}
	case days <= 7:
		return ExpiryStatus{Category: ExpiryCritical, Days: days}
	case days <= 30:
		return ExpiryStatus{Category: ExpirySoon, Days: days}
	default:
		return ExpiryStatus{Category: ExpiryGood, Days: days}
	}
}
