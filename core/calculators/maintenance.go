package calculators

import (
	"github.com/shopspring/decimal"

	"cleanquote/core/pricing"
	"cleanquote/internal/errors"
)

// Maintenance prices by estimated hours when given, otherwise by area, then
// adds every requested extra. A requested extra must be configured.
func Maintenance(cfg pricing.MaintenanceConfig, in MaintenanceInput) (Result, error) {
	details := map[string]any{}

	var net decimal.Decimal
	if in.Hours.IsPositive() {
		net = in.Hours.Mul(cfg.HourlyRate)
		details["method"] = "hourly"
		details["hours"] = in.Hours
		details["rate"] = money(cfg.HourlyRate)
	} else {
		net = in.Sqm.Mul(cfg.PriceSqm)
		details["method"] = "sqm"
		details["sqm"] = in.Sqm
		details["price_sqm"] = money(cfg.PriceSqm)
	}

	if len(in.Extras) > 0 {
		extras := make(map[string]decimal.Decimal, len(in.Extras))
		sum := decimal.Zero
		for _, name := range in.Extras {
			price, ok := cfg.Extras[name]
			if !ok {
				return Result{}, errors.UnknownExtra(name)
			}
			extras[name] = extras[name].Add(price)
			sum = sum.Add(price)
		}
		net = net.Add(sum)
		details["extras"] = extras
		details["extras_total"] = money(sum)
	}

	return Result{Net: net, Breakdown: details}, nil
}
