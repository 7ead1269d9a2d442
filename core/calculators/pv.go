package calculators

import (
	"cleanquote/core/pricing"
	"cleanquote/core/pricing/primitives"
)

// PV prices module cleaning at the rate of the tier containing the module
// count, plus the difficult-access percentage and the fixed dirt surcharge.
func PV(cfg pricing.PVConfig, in PVInput) (Result, error) {
	tier, base, err := primitives.CalculateTierCost(cfg.Tiers, in.Modules)
	if err != nil {
		return Result{}, err
	}

	difficult := surcharge(in.DifficultAccess, base, cfg.SurchargeDifficultPercent)
	dirty := fixed(in.VeryDirty, cfg.SurchargeDirtyFix)

	return Result{
		Net: base.Add(difficult).Add(dirty),
		Breakdown: map[string]any{
			"count":               in.Modules,
			"tier":                tier.Label(),
			"price_per_module":    money(tier.Price),
			"base":                money(base),
			"surcharge_difficult": money(difficult),
			"surcharge_dirty":     money(dirty),
		},
	}, nil
}
