package calculators

import (
	"github.com/shopspring/decimal"

	"cleanquote/core/pricing"
	"cleanquote/core/types"
	"cleanquote/internal/errors"
)

// DefaultFrequencyPerMonth is assumed when a units request omits the frequency
var DefaultFrequencyPerMonth = decimal.NewFromInt(4)

// Stairwell prices stairwell cleaning by the configured method. The
// request's method hint never changes the method.
func Stairwell(cfg pricing.StairwellConfig, in StairwellInput) (Result, error) {
	var (
		res Result
		err error
	)
	switch cfg.Method {
	case types.StairwellByUnits:
		res, err = stairwellUnits(cfg, in)
	case types.StairwellBySqm:
		res, err = stairwellSqm(cfg, in)
	case types.StairwellFlat:
		res, err = stairwellFlat(cfg, in)
	default:
		_, err = types.ParseStairwellMethod(string(cfg.Method))
	}
	if err != nil {
		return Result{}, err
	}

	res.Breakdown["method"] = string(cfg.Method)
	if in.MethodHint != "" {
		res.Breakdown["method_hint"] = in.MethodHint
	}
	if in.Floors > 0 {
		res.Breakdown["floors"] = in.Floors
	}
	return res, nil
}

func stairwellUnits(cfg pricing.StairwellConfig, in StairwellInput) (Result, error) {
	rates, err := cfg.UnitsRates()
	if err != nil {
		return Result{}, err
	}

	freq := DefaultFrequencyPerMonth
	if in.FrequencyPerMonth.Valid {
		freq = in.FrequencyPerMonth.Decimal
	}

	var rate decimal.Decimal
	var label string
	switch {
	case freq.Equal(decimal.NewFromInt(4)):
		rate, label = rates.Weekly, "weekly"
	case freq.Equal(decimal.NewFromInt(2)):
		rate, label = rates.Biweekly, "biweekly"
	case freq.Equal(decimal.NewFromInt(1)):
		rate, label = rates.Monthly, "monthly"
	default:
		return Result{}, errors.InvalidInput("frequency_per_month must be 4, 2 or 1, got %s", freq).
			WithContext("field", "frequency_per_month")
	}

	base := units(in.Units).Mul(rate)
	return Result{
		Net: base.Add(rates.BaseObject),
		Breakdown: map[string]any{
			"units":          in.Units,
			"freq":           freq,
			"frequency":      label,
			"p_unit":         money(rate),
			"base_obj":       money(rates.BaseObject),
			"units_subtotal": money(base),
		},
	}, nil
}

// stairwellSqm bills the area up to the threshold at one rate and the rest
// at another, so the price is continuous at the threshold.
func stairwellSqm(cfg pricing.StairwellConfig, in StairwellInput) (Result, error) {
	rates, err := cfg.SqmRates()
	if err != nil {
		return Result{}, err
	}

	upTo := decimal.Min(in.Sqm, rates.Threshold)
	after := decimal.Max(in.Sqm.Sub(rates.Threshold), decimal.Zero)

	upToCost := upTo.Mul(rates.UpToThreshold)
	afterCost := after.Mul(rates.AfterThreshold)

	return Result{
		Net: rates.Base.Add(upToCost).Add(afterCost),
		Breakdown: map[string]any{
			"sqm":             in.Sqm,
			"threshold_sqm":   rates.Threshold,
			"price_sqm_upto":  money(rates.UpToThreshold),
			"sqm_upto_cost":   money(upToCost),
			"price_sqm_after": money(rates.AfterThreshold),
			"sqm_after_cost":  money(afterCost),
			"base_price_sqm":  money(rates.Base),
		},
	}, nil
}

func stairwellFlat(cfg pricing.StairwellConfig, in StairwellInput) (Result, error) {
	rates, err := cfg.FlatRates()
	if err != nil {
		return Result{}, err
	}

	cellar := fixed(in.HasCellar, rates.Cellar)
	windows := units(in.Windows).Mul(rates.Window)

	return Result{
		Net: rates.Flat.Add(cellar).Add(windows),
		Breakdown: map[string]any{
			"flat":         money(rates.Flat),
			"cellar":       in.HasCellar,
			"cellar_price": money(cellar),
			"windows":      in.Windows,
			"windows_cost": money(windows),
		},
	}, nil
}
