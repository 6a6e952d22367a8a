package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const usdPrecision = 2

// ErrInvalidAmount is returned for amounts that are not finite numbers.
var ErrInvalidAmount = errors.New("amount must be a finite number")

// ParseAmount parses a draft amount. Range and sufficiency are the ledger's concern.
func ParseAmount(value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatUSD renders a USD value with cent precision.
func FormatUSD(d decimal.Decimal) string {
	return "$" + d.StringFixed(usdPrecision)
}
