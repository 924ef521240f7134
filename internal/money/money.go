// Package money parses and formats monetary values. All amounts in the
// application are exact decimals with at most two fractional digits;
// anything else is rejected here before it can reach the ledger.
package money

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxPrecision is the number of fractional digits a monetary value may carry.
const MaxPrecision = 2

// Parse converts a user-supplied string into a decimal amount. It fails on
// non-numeric input and on values with more than two decimal digits; it
// never rounds.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q is not a number", s)
	}
	if d.Exponent() < -MaxPrecision {
		return decimal.Zero, fmt.Errorf("amount %q has more than %d decimal places", s, MaxPrecision)
	}
	return d, nil
}

// FromFloat converts a float into a decimal amount, rejecting NaN, infinities
// and values that are not representable at two decimal places.
func FromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("amount %v is not finite", f)
	}
	d := decimal.NewFromFloat(f)
	if !d.Equal(d.Truncate(MaxPrecision)) {
		return decimal.Zero, fmt.Errorf("amount %v has more than %d decimal places", f, MaxPrecision)
	}
	return d, nil
}

// Format renders an amount with exactly two decimal places.
func Format(d decimal.Decimal) string {
	return d.StringFixed(MaxPrecision)
}
