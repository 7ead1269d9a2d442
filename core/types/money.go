// Package types - Shared quote types and money helpers
package types

import "github.com/shopspring/decimal"

func init() {
	// Monetary values leave the engine as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

var hundred = decimal.NewFromInt(100)

// Percent returns pct percent of base
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// RoundMoney rounds to cents, half away from zero
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MaxMoney returns the larger of a and b
func MaxMoney(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThanOrEqual(b) {
		return a
	}
	return b
}
