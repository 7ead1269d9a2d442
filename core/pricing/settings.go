// Package pricing holds the operator-editable pricing configuration, its
// validation rules, the versioned snapshot store and the travel fee resolver.
package pricing

import (
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"cleanquote/core/pricing/primitives"
	"cleanquote/core/types"
	"cleanquote/internal/errors"
)

// Section names an independently replaceable part of the configuration
type Section string

const (
	SectionPV          Section = "pv"
	SectionStairwell   Section = "stairwell"
	SectionGlass       Section = "glass"
	SectionMaintenance Section = "maintenance"
	SectionCities      Section = "cities"
)

// SettingsSections are the four category sections, in lock order
var SettingsSections = []Section{SectionPV, SectionStairwell, SectionGlass, SectionMaintenance}

// ParseSection resolves a settings section name from a URL or CLI flag
func ParseSection(s string) (Section, error) {
	switch sec := Section(strings.ToLower(strings.TrimSpace(s))); sec {
	case SectionPV, SectionStairwell, SectionGlass, SectionMaintenance, SectionCities:
		return sec, nil
	default:
		return "", errors.InvalidInput("unknown configuration section %q", s)
	}
}

// Settings is the full pricing configuration document
type Settings struct {
	PV          PVConfig          `json:"pv_config"`
	Stairwell   StairwellConfig   `json:"stairwell_config"`
	Glass       GlassConfig       `json:"glass_config"`
	Maintenance MaintenanceConfig `json:"maintenance_config"`
}

// PVConfig prices photovoltaic module cleaning
type PVConfig struct {
	Tiers                     []primitives.Tier `json:"tiers"`
	SurchargeDifficultPercent decimal.Decimal   `json:"surcharge_difficult_percent"`
	SurchargeDirtyFix         decimal.Decimal   `json:"surcharge_dirty_fix"`
}

// StairwellConfig prices stairwell cleaning. Method selects which rate group
// applies; only the active group is required to be set.
type StairwellConfig struct {
	Method types.StairwellMethod `json:"method"`

	PricePerUnitWeekly   decimal.NullDecimal `json:"price_per_unit_weekly"`
	PricePerUnitBiweekly decimal.NullDecimal `json:"price_per_unit_biweekly"`
	PricePerUnitMonthly  decimal.NullDecimal `json:"price_per_unit_monthly"`
	BasePriceObj         decimal.NullDecimal `json:"base_price_obj"`

	ThresholdSqm  decimal.NullDecimal `json:"threshold_sqm"`
	PriceSqmUpto  decimal.NullDecimal `json:"price_sqm_upto"`
	PriceSqmAfter decimal.NullDecimal `json:"price_sqm_after"`
	BasePriceSqm  decimal.NullDecimal `json:"base_price_sqm"`

	FlatPrice   decimal.NullDecimal `json:"flat_price"`
	CellarPrice decimal.NullDecimal `json:"cellar_price"`
	WindowPrice decimal.NullDecimal `json:"window_price"`
}

// UnitsRates are the rates of the units method
type UnitsRates struct {
	Weekly, Biweekly, Monthly decimal.Decimal
	BaseObject                decimal.Decimal
}

// SqmRates are the rates of the sqm method
type SqmRates struct {
	Threshold      decimal.Decimal
	UpToThreshold  decimal.Decimal
	AfterThreshold decimal.Decimal
	Base           decimal.Decimal
}

// FlatRates are the rates of the flat method
type FlatRates struct {
	Flat, Cellar, Window decimal.Decimal
}

// UnitsRates returns the units-method rates or a configuration error naming
// the first missing field
func (c StairwellConfig) UnitsRates() (UnitsRates, error) {
	var r UnitsRates
	err := requireRates(c.Method,
		rateField{"price_per_unit_weekly", c.PricePerUnitWeekly, &r.Weekly},
		rateField{"price_per_unit_biweekly", c.PricePerUnitBiweekly, &r.Biweekly},
		rateField{"price_per_unit_monthly", c.PricePerUnitMonthly, &r.Monthly},
		rateField{"base_price_obj", c.BasePriceObj, &r.BaseObject},
	)
	return r, err
}

// SqmRates returns the sqm-method rates
func (c StairwellConfig) SqmRates() (SqmRates, error) {
	var r SqmRates
	err := requireRates(c.Method,
		rateField{"threshold_sqm", c.ThresholdSqm, &r.Threshold},
		rateField{"price_sqm_upto", c.PriceSqmUpto, &r.UpToThreshold},
		rateField{"price_sqm_after", c.PriceSqmAfter, &r.AfterThreshold},
		rateField{"base_price_sqm", c.BasePriceSqm, &r.Base},
	)
	return r, err
}

// FlatRates returns the flat-method rates
func (c StairwellConfig) FlatRates() (FlatRates, error) {
	var r FlatRates
	err := requireRates(c.Method,
		rateField{"flat_price", c.FlatPrice, &r.Flat},
		rateField{"cellar_price", c.CellarPrice, &r.Cellar},
		rateField{"window_price", c.WindowPrice, &r.Window},
	)
	return r, err
}

type rateField struct {
	name  string
	value decimal.NullDecimal
	dst   *decimal.Decimal
}

func requireRates(method types.StairwellMethod, fields ...rateField) error {
	for _, f := range fields {
		if !f.value.Valid {
			return errors.Configuration("stairwell method %q requires %s", method, f.name).
				WithContext("section", string(SectionStairwell))
		}
		*f.dst = f.value.Decimal
	}
	return nil
}

// GlassConfig prices glass cleaning by window count or by area
type GlassConfig struct {
	PriceWindowIn             decimal.Decimal `json:"price_window_in"`
	PriceWindowOut            decimal.Decimal `json:"price_window_out"`
	SurchargeHeight           decimal.Decimal `json:"surcharge_height"`
	SurchargeDifficultPercent decimal.Decimal `json:"surcharge_difficult_percent"`
	PriceSqmIn                decimal.Decimal `json:"price_sqm_in"`
	PriceSqmOut               decimal.Decimal `json:"price_sqm_out"`
	SurchargeFramePercent     decimal.Decimal `json:"surcharge_frame_percent"`
}

// MaintenanceConfig prices general maintenance by area or by hour, plus
// named extras
type MaintenanceConfig struct {
	PriceSqm   decimal.Decimal            `json:"price_sqm"`
	HourlyRate decimal.Decimal            `json:"hourly_rate"`
	Extras     map[string]decimal.Decimal `json:"extras"`
}

// Clone returns a deep copy
func (s Settings) Clone() Settings {
	out := s
	out.PV.Tiers = make([]primitives.Tier, len(s.PV.Tiers))
	for i, tier := range s.PV.Tiers {
		if tier.Max != nil {
			tier.Max = primitives.Bound(*tier.Max)
		}
		out.PV.Tiers[i] = tier
	}
	out.Maintenance.Extras = maps.Clone(s.Maintenance.Extras)
	if out.Maintenance.Extras == nil {
		out.Maintenance.Extras = map[string]decimal.Decimal{}
	}
	return out
}

// SortTiers orders tiers by ascending min, as the UI may submit them in any order
func (c *PVConfig) SortTiers() {
	slices.SortStableFunc(c.Tiers, func(a, b primitives.Tier) int {
		return a.Min - b.Min
	})
}

func nullDec(v float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}

// DefaultSettings returns the bootstrap configuration used when nothing has
// been persisted yet
func DefaultSettings() Settings {
	return Settings{
		PV: PVConfig{
			Tiers: []primitives.Tier{
				{Min: 0, Max: primitives.Bound(10), Price: decimal.NewFromInt(12)},
				{Min: 11, Max: primitives.Bound(25), Price: decimal.NewFromInt(10)},
				{Min: 26, Price: decimal.NewFromInt(8)},
			},
			SurchargeDifficultPercent: decimal.NewFromInt(20),
			SurchargeDirtyFix:         decimal.NewFromInt(15),
		},
		Stairwell: StairwellConfig{
			Method:               types.StairwellByUnits,
			PricePerUnitWeekly:   nullDec(15),
			PricePerUnitBiweekly: nullDec(20),
			PricePerUnitMonthly:  nullDec(25),
			BasePriceObj:         nullDec(30),
			ThresholdSqm:         nullDec(120),
			PriceSqmUpto:         nullDec(6),
			PriceSqmAfter:        nullDec(4),
			BasePriceSqm:         nullDec(40),
			FlatPrice:            nullDec(120),
			CellarPrice:          nullDec(25),
			WindowPrice:          nullDec(5),
		},
		Glass: GlassConfig{
			PriceWindowIn:             decimal.NewFromInt(4),
			PriceWindowOut:            decimal.NewFromInt(5),
			SurchargeHeight:           decimal.NewFromInt(15),
			SurchargeDifficultPercent: decimal.NewFromInt(20),
			PriceSqmIn:                decimal.NewFromInt(6),
			PriceSqmOut:               decimal.NewFromInt(7),
			SurchargeFramePercent:     decimal.NewFromInt(15),
		},
		Maintenance: MaintenanceConfig{
			PriceSqm:   decimal.RequireFromString("2.8"),
			HourlyRate: decimal.NewFromInt(38),
			Extras:     map[string]decimal.Decimal{},
		},
	}
}
