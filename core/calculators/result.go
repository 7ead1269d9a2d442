package calculators

import (
	"github.com/shopspring/decimal"

	"cleanquote/core/types"
)

// Result is a calculator's unrounded net price and its display breakdown
type Result struct {
	Net       decimal.Decimal
	Breakdown types.Details
}

// money is how amounts appear in a breakdown
func money(d decimal.Decimal) decimal.Decimal {
	return types.RoundMoney(d)
}

// surcharge returns pct percent of base when on, zero otherwise
func surcharge(on bool, base, pct decimal.Decimal) decimal.Decimal {
	if !on {
		return decimal.Zero
	}
	return types.Percent(base, pct)
}

// fixed returns amount when on, zero otherwise
func fixed(on bool, amount decimal.Decimal) decimal.Decimal {
	if !on {
		return decimal.Zero
	}
	return amount
}

func units(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
