package domain

import (
	"maps"
	"time"
)

// PriceQuote maps price-feed identifiers to USD values.
// Stale is set when the last poll failed and the values come from an earlier cycle.
type PriceQuote struct {
	USD       map[string]float64 `json:"usd"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Stale     bool               `json:"stale"`
}

// Empty reports whether the quote holds no prices.
func (q PriceQuote) Empty() bool {
	return len(q.USD) == 0
}

// Clone returns a copy that shares no map with q.
func (q PriceQuote) Clone() PriceQuote {
	q.USD = maps.Clone(q.USD)
	return q
}

// Price returns the USD value for a price-feed identifier.
func (q PriceQuote) Price(feedID string) (float64, bool) {
	if feedID == "" {
		return 0, false
	}
	v, ok := q.USD[feedID]
	return v, ok
}
