package calculators

import (
	"github.com/shopspring/decimal"

	"cleanquote/core/pricing"
	"cleanquote/core/types"
)

// Glass prices glass cleaning by the method chosen in the request. The
// height surcharge is a fixed amount; the percentage surcharges are each
// taken on the base and do not compound.
func Glass(cfg pricing.GlassConfig, in GlassInput) (Result, error) {
	details := map[string]any{"method": string(in.Method)}

	var base, frame decimal.Decimal
	switch in.Method {
	case types.GlassBySqm:
		base = in.SqmIn.Mul(cfg.PriceSqmIn).Add(in.SqmOut.Mul(cfg.PriceSqmOut))
		frame = surcharge(in.FrameCleaning, base, cfg.SurchargeFramePercent)
		details["sqm_in"] = in.SqmIn
		details["sqm_out"] = in.SqmOut
		details["surcharge_frame"] = money(frame)
	default:
		base = units(in.CountIn).Mul(cfg.PriceWindowIn).Add(units(in.CountOut).Mul(cfg.PriceWindowOut))
		details["count_in"] = in.CountIn
		details["count_out"] = in.CountOut
	}

	height := fixed(in.Height, cfg.SurchargeHeight)
	difficult := surcharge(in.DifficultAccess, base, cfg.SurchargeDifficultPercent)

	details["base"] = money(base)
	details["surcharge_height"] = money(height)
	details["surcharge_difficult"] = money(difficult)

	return Result{
		Net:       base.Add(frame).Add(height).Add(difficult),
		Breakdown: details,
	}, nil
}
