// Package primitives - Tiered pricing primitives
// A tier table prices a whole volume at the rate of the single tier that
// contains it (tier-jump pricing, no marginal blending across tiers).
package primitives

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cleanquote/internal/errors"
)

// Tier is one volume band of a tier table. Max == nil means unbounded.
type Tier struct {
	Min   int             `json:"min"`
	Max   *int            `json:"max"`
	Price decimal.Decimal `json:"price"`
}

// Unbounded reports whether the tier has no upper limit
func (t Tier) Unbounded() bool {
	return t.Max == nil
}

// Contains reports whether n falls in [Min, Max]
func (t Tier) Contains(n int) bool {
	if n < t.Min {
		return false
	}
	return t.Max == nil || n <= *t.Max
}

// Label renders the tier range for breakdowns, e.g. "11-25" or "26+"
func (t Tier) Label() string {
	if t.Max == nil {
		return fmt.Sprintf("%d+", t.Min)
	}
	return fmt.Sprintf("%d-%d", t.Min, *t.Max)
}

// Bound is a convenience for building bounded tiers
func Bound(n int) *int {
	return &n
}

// PriceForUnits returns the tier governing a volume of n units. Tiers are
// scanned in order; the first containing tier wins.
func PriceForUnits(tiers []Tier, n int) (Tier, error) {
	if n < 0 {
		return Tier{}, errors.InvalidInput("unit count must be >= 0, got %d", n)
	}
	for _, tier := range tiers {
		if tier.Contains(n) {
			return tier, nil
		}
	}
	return Tier{}, errors.Configuration("no tier covers %d units", n).WithContext("units", n)
}

// CalculateTierCost prices n units at the matched tier's unit price
func CalculateTierCost(tiers []Tier, n int) (Tier, decimal.Decimal, error) {
	tier, err := PriceForUnits(tiers, n)
	if err != nil {
		return Tier{}, decimal.Zero, err
	}
	return tier, tier.Price.Mul(decimal.NewFromInt(int64(n))), nil
}

// ValidateTiers checks that a tier table covers [0, ∞) with integer bands
// that are sorted, contiguous and non-overlapping, and that prices are
// non-negative. Only the last tier may be unbounded, and it must be.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return errors.Configuration("tier table is empty")
	}
	if tiers[0].Min != 0 {
		return errors.Configuration("first tier must start at 0, starts at %d", tiers[0].Min)
	}

	for i, tier := range tiers {
		if tier.Price.IsNegative() {
			return errors.Configuration("tier %s has negative price %s", tier.Label(), tier.Price)
		}
		last := i == len(tiers)-1
		if tier.Max == nil {
			if !last {
				return errors.Configuration("tier %s is unbounded but is not the last tier", tier.Label())
			}
			continue
		}
		if *tier.Max < tier.Min {
			return errors.Configuration("tier %d-%d has max below min", tier.Min, *tier.Max)
		}
		if last {
			return errors.Configuration("last tier %s must be unbounded", tier.Label())
		}
		if next := tiers[i+1]; next.Min != *tier.Max+1 {
			if next.Min <= *tier.Max {
				return errors.Configuration("tiers %s and %s overlap", tier.Label(), next.Label())
			}
			return errors.Configuration("gap between tiers %s and %s", tier.Label(), next.Label())
		}
	}
	return nil
}
