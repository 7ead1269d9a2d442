package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"cleanquote/core/determinism"
	"cleanquote/core/pricing/primitives"
	"cleanquote/core/types"
	"cleanquote/internal/errors"
)

// Validate checks every section. Configuration writes are rejected whole on
// the first violation.
func (s Settings) Validate() error {
	for _, section := range SettingsSections {
		if err := s.validateSection(section); err != nil {
			return err
		}
	}
	return nil
}

func (s Settings) validateSection(section Section) error {
	switch section {
	case SectionPV:
		return s.PV.Validate()
	case SectionStairwell:
		return s.Stairwell.Validate()
	case SectionGlass:
		return s.Glass.Validate()
	case SectionMaintenance:
		return s.Maintenance.Validate()
	}
	return nil
}

// Validate checks tier coverage and surcharges
func (c PVConfig) Validate() error {
	if err := primitives.ValidateTiers(c.Tiers); err != nil {
		return inSection(err, SectionPV)
	}
	return nonNegative(SectionPV,
		named{"surcharge_difficult_percent", c.SurchargeDifficultPercent},
		named{"surcharge_dirty_fix", c.SurchargeDirtyFix},
	)
}

// Validate checks that the method is known, that its rate group is complete
// and that every set rate is non-negative
func (c StairwellConfig) Validate() error {
	method, err := types.ParseStairwellMethod(string(c.Method))
	if err != nil {
		return inSection(err, SectionStairwell)
	}

	switch method {
	case types.StairwellByUnits:
		_, err = c.UnitsRates()
	case types.StairwellBySqm:
		_, err = c.SqmRates()
	case types.StairwellFlat:
		_, err = c.FlatRates()
	}
	if err != nil {
		return err
	}

	var set []named
	for _, f := range []struct {
		name  string
		value decimal.NullDecimal
	}{
		{"price_per_unit_weekly", c.PricePerUnitWeekly},
		{"price_per_unit_biweekly", c.PricePerUnitBiweekly},
		{"price_per_unit_monthly", c.PricePerUnitMonthly},
		{"base_price_obj", c.BasePriceObj},
		{"threshold_sqm", c.ThresholdSqm},
		{"price_sqm_upto", c.PriceSqmUpto},
		{"price_sqm_after", c.PriceSqmAfter},
		{"base_price_sqm", c.BasePriceSqm},
		{"flat_price", c.FlatPrice},
		{"cellar_price", c.CellarPrice},
		{"window_price", c.WindowPrice},
	} {
		if f.value.Valid {
			set = append(set, named{f.name, f.value.Decimal})
		}
	}
	return nonNegative(SectionStairwell, set...)
}

// Validate checks that all glass rates are non-negative
func (c GlassConfig) Validate() error {
	return nonNegative(SectionGlass,
		named{"price_window_in", c.PriceWindowIn},
		named{"price_window_out", c.PriceWindowOut},
		named{"surcharge_height", c.SurchargeHeight},
		named{"surcharge_difficult_percent", c.SurchargeDifficultPercent},
		named{"price_sqm_in", c.PriceSqmIn},
		named{"price_sqm_out", c.PriceSqmOut},
		named{"surcharge_frame_percent", c.SurchargeFramePercent},
	)
}

// Validate checks rates and extras
func (c MaintenanceConfig) Validate() error {
	if err := nonNegative(SectionMaintenance,
		named{"price_sqm", c.PriceSqm},
		named{"hourly_rate", c.HourlyRate},
	); err != nil {
		return err
	}

	var err error
	determinism.RangeMapSorted(c.Extras, func(name string, price decimal.Decimal) bool {
		if strings.TrimSpace(name) == "" {
			err = errors.Configuration("maintenance extra with empty name")
			return false
		}
		err = nonNegative(SectionMaintenance, named{"extras." + name, price})
		return err == nil
	})
	return inSection(err, SectionMaintenance)
}

// Validate checks a single city record
func (c CityPricing) Validate() error {
	if strings.TrimSpace(c.CityName) == "" {
		return errors.Configuration("city_name is required").WithContext("section", string(SectionCities))
	}
	fields := []named{{"travel_fee", c.TravelFee}}
	if c.MinOrderValue.Valid {
		fields = append(fields, named{"min_order_value", c.MinOrderValue.Decimal})
	}
	if c.SurchargePercent.Valid {
		fields = append(fields, named{"surcharge_percent", c.SurchargePercent.Decimal})
	}
	if err := nonNegative(SectionCities, fields...); err != nil {
		if e, ok := errors.As(err); ok {
			return e.WithContext("city_name", c.CityName)
		}
		return err
	}
	return nil
}

// ValidateCities checks each record plus uniqueness of ids and names.
// Names are compared the way the travel resolver matches them, so no two
// records can answer the same lookup.
func ValidateCities(cities []CityPricing) error {
	ids := make(map[string]bool, len(cities))
	names := make(map[string]string, len(cities))
	for _, city := range cities {
		if err := city.Validate(); err != nil {
			return err
		}
		if city.ID == "" {
			return errors.Configuration("city %q has no id", city.CityName)
		}
		if ids[city.ID] {
			return errors.Conflict("duplicate city id %q", city.ID)
		}
		ids[city.ID] = true

		key := NormalizeCityName(city.CityName)
		if existing, ok := names[key]; ok {
			return errors.Conflict("city %q already configured as %q", city.CityName, existing)
		}
		names[key] = city.CityName
	}
	return nil
}

type named struct {
	name  string
	value decimal.Decimal
}

func nonNegative(section Section, fields ...named) error {
	for _, f := range fields {
		if f.value.IsNegative() {
			return errors.Configuration("%s.%s must be >= 0, got %s", section, f.name, f.value).
				WithContext("section", string(section))
		}
	}
	return nil
}

func inSection(err error, section Section) error {
	if err == nil {
		return nil
	}
	if e, ok := errors.As(err); ok {
		return e.WithContext("section", string(section))
	}
	return err
}
