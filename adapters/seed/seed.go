// Package seed loads the bootstrap pricing configuration from an HCL file.
//
//	pv {
//	  surcharge_difficult_percent = 20
//	  tier {
//	    min   = 0
//	    max   = 10
//	    price = 12
//	  }
//	}
//	city "Köln" {
//	  travel_fee      = 10
//	  min_order_value = 80
//	}
//
// Blocks and prices left out keep the built-in default. A city needs a
// travel_fee, a tier needs min and price.
package seed

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"cleanquote/core/pricing"
	"cleanquote/core/pricing/primitives"
	"cleanquote/core/types"
	"cleanquote/internal/errors"
)

// Seed is a decoded, validated seed file
type Seed struct {
	Settings pricing.Settings
	Cities   []pricing.CityPricing

	// Source is SourceSeed when a file was read, SourceDefault otherwise
	Source pricing.Source
}

type file struct {
	PV          *pvBlock          `hcl:"pv,block"`
	Stairwell   *stairwellBlock   `hcl:"stairwell,block"`
	Glass       *glassBlock       `hcl:"glass,block"`
	Maintenance *maintenanceBlock `hcl:"maintenance,block"`
	Cities      []cityBlock       `hcl:"city,block"`
}

type pvBlock struct {
	SurchargeDifficultPercent hcl.Expression `hcl:"surcharge_difficult_percent,optional"`
	SurchargeDirtyFix         hcl.Expression `hcl:"surcharge_dirty_fix,optional"`
	Tiers                     []tierBlock    `hcl:"tier,block"`
}

type tierBlock struct {
	Min   int            `hcl:"min"`
	Max   *int           `hcl:"max,optional"`
	Price hcl.Expression `hcl:"price"`
}

type stairwellBlock struct {
	Method               *string        `hcl:"method,optional"`
	PricePerUnitWeekly   hcl.Expression `hcl:"price_per_unit_weekly,optional"`
	PricePerUnitBiweekly hcl.Expression `hcl:"price_per_unit_biweekly,optional"`
	PricePerUnitMonthly  hcl.Expression `hcl:"price_per_unit_monthly,optional"`
	BasePriceObj         hcl.Expression `hcl:"base_price_obj,optional"`
	ThresholdSqm         hcl.Expression `hcl:"threshold_sqm,optional"`
	PriceSqmUpto         hcl.Expression `hcl:"price_sqm_upto,optional"`
	PriceSqmAfter        hcl.Expression `hcl:"price_sqm_after,optional"`
	BasePriceSqm         hcl.Expression `hcl:"base_price_sqm,optional"`
	FlatPrice            hcl.Expression `hcl:"flat_price,optional"`
	CellarPrice          hcl.Expression `hcl:"cellar_price,optional"`
	WindowPrice          hcl.Expression `hcl:"window_price,optional"`
}

type glassBlock struct {
	PriceWindowIn             hcl.Expression `hcl:"price_window_in,optional"`
	PriceWindowOut            hcl.Expression `hcl:"price_window_out,optional"`
	SurchargeHeight           hcl.Expression `hcl:"surcharge_height,optional"`
	SurchargeDifficultPercent hcl.Expression `hcl:"surcharge_difficult_percent,optional"`
	PriceSqmIn                hcl.Expression `hcl:"price_sqm_in,optional"`
	PriceSqmOut               hcl.Expression `hcl:"price_sqm_out,optional"`
	SurchargeFramePercent     hcl.Expression `hcl:"surcharge_frame_percent,optional"`
}

type maintenanceBlock struct {
	PriceSqm   hcl.Expression `hcl:"price_sqm,optional"`
	HourlyRate hcl.Expression `hcl:"hourly_rate,optional"`
	Extras     hcl.Expression `hcl:"extras,optional"`
}

type cityBlock struct {
	Name             string         `hcl:"name,label"`
	ID               *string        `hcl:"id,optional"`
	TravelFee        hcl.Expression `hcl:"travel_fee"`
	MinOrderValue    hcl.Expression `hcl:"min_order_value,optional"`
	SurchargePercent hcl.Expression `hcl:"surcharge_percent,optional"`
}

// LoadFile reads and validates a seed file. A missing file yields the
// built-in defaults and no cities.
func LoadFile(path string) (*Seed, error) {
	src, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Seed{Settings: pricing.DefaultSettings(), Cities: []pricing.CityPricing{}, Source: pricing.SourceDefault}, nil
	}
	if err != nil {
		return nil, errors.Internal("read pricing seed", err)
	}
	return Parse(src, path)
}

// Parse decodes and validates seed source. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Seed, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	var raw file
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &raw); diags.HasErrors() {
		return nil, diagError(diags)
	}

	d := &decoder{}
	settings := pricing.DefaultSettings()
	if raw.PV != nil {
		d.pv(&settings.PV, raw.PV)
	}
	if raw.Stairwell != nil {
		d.stairwell(&settings.Stairwell, raw.Stairwell)
	}
	if raw.Glass != nil {
		d.glass(&settings.Glass, raw.Glass)
	}
	if raw.Maintenance != nil {
		d.maintenance(&settings.Maintenance, raw.Maintenance)
	}
	cities := make([]pricing.CityPricing, 0, len(raw.Cities))
	for _, c := range raw.Cities {
		cities = append(cities, d.city(c))
	}
	if d.diags.HasErrors() {
		return nil, diagError(d.diags)
	}

	settings.PV.SortTiers()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := pricing.ValidateCities(cities); err != nil {
		return nil, err
	}

	return &Seed{Settings: settings, Cities: cities, Source: pricing.SourceSeed}, nil
}

// CityID derives a stable id from a city name, e.g. "Bad Honnef" → "bad-honnef"
func CityID(name string) string {
	return strings.Join(strings.Fields(pricing.NormalizeCityName(name)), "-")
}

// decoder accumulates diagnostics while evaluating expressions
type decoder struct {
	diags hcl.Diagnostics
}

func (d *decoder) pv(cfg *pricing.PVConfig, b *pvBlock) {
	d.amount(&cfg.SurchargeDifficultPercent, b.SurchargeDifficultPercent)
	d.amount(&cfg.SurchargeDirtyFix, b.SurchargeDirtyFix)
	if len(b.Tiers) == 0 {
		return
	}
	cfg.Tiers = make([]primitives.Tier, len(b.Tiers))
	for i, t := range b.Tiers {
		cfg.Tiers[i] = primitives.Tier{Min: t.Min, Max: t.Max}
		d.amount(&cfg.Tiers[i].Price, t.Price)
	}
}

func (d *decoder) stairwell(cfg *pricing.StairwellConfig, b *stairwellBlock) {
	if b.Method != nil {
		cfg.Method = types.StairwellMethod(strings.ToLower(strings.TrimSpace(*b.Method)))
	}
	d.nullable(&cfg.PricePerUnitWeekly, b.PricePerUnitWeekly)
	d.nullable(&cfg.PricePerUnitBiweekly, b.PricePerUnitBiweekly)
	d.nullable(&cfg.PricePerUnitMonthly, b.PricePerUnitMonthly)
	d.nullable(&cfg.BasePriceObj, b.BasePriceObj)
	d.nullable(&cfg.ThresholdSqm, b.ThresholdSqm)
	d.nullable(&cfg.PriceSqmUpto, b.PriceSqmUpto)
	d.nullable(&cfg.PriceSqmAfter, b.PriceSqmAfter)
	d.nullable(&cfg.BasePriceSqm, b.BasePriceSqm)
	d.nullable(&cfg.FlatPrice, b.FlatPrice)
	d.nullable(&cfg.CellarPrice, b.CellarPrice)
	d.nullable(&cfg.WindowPrice, b.WindowPrice)
}

func (d *decoder) glass(cfg *pricing.GlassConfig, b *glassBlock) {
	d.amount(&cfg.PriceWindowIn, b.PriceWindowIn)
	d.amount(&cfg.PriceWindowOut, b.PriceWindowOut)
	d.amount(&cfg.SurchargeHeight, b.SurchargeHeight)
	d.amount(&cfg.SurchargeDifficultPercent, b.SurchargeDifficultPercent)
	d.amount(&cfg.PriceSqmIn, b.PriceSqmIn)
	d.amount(&cfg.PriceSqmOut, b.PriceSqmOut)
	d.amount(&cfg.SurchargeFramePercent, b.SurchargeFramePercent)
}

func (d *decoder) maintenance(cfg *pricing.MaintenanceConfig, b *maintenanceBlock) {
	d.amount(&cfg.PriceSqm, b.PriceSqm)
	d.amount(&cfg.HourlyRate, b.HourlyRate)

	val, ok := d.value(b.Extras)
	if !ok {
		return
	}
	if !val.CanIterateElements() || val.Type().IsListType() || val.Type().IsTupleType() {
		d.fail(b.Extras, "extras must be a map of name to price")
		return
	}
	extras := make(map[string]decimal.Decimal, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		price, ok := d.number(b.Extras, v)
		if !ok {
			return
		}
		extras[k.AsString()] = price
	}
	cfg.Extras = extras
}

func (d *decoder) city(b cityBlock) pricing.CityPricing {
	c := pricing.CityPricing{CityName: b.Name, ID: CityID(b.Name)}
	if b.ID != nil && *b.ID != "" {
		c.ID = *b.ID
	}
	d.amount(&c.TravelFee, b.TravelFee)
	d.nullable(&c.MinOrderValue, b.MinOrderValue)
	d.nullable(&c.SurchargePercent, b.SurchargePercent)
	return c
}

// amount sets dst when the attribute is present
func (d *decoder) amount(dst *decimal.Decimal, expr hcl.Expression) {
	val, ok := d.value(expr)
	if !ok {
		return
	}
	if n, ok := d.number(expr, val); ok {
		*dst = n
	}
}

// nullable sets dst when the attribute is present
func (d *decoder) nullable(dst *decimal.NullDecimal, expr hcl.Expression) {
	val, ok := d.value(expr)
	if !ok {
		return
	}
	if n, ok := d.number(expr, val); ok {
		*dst = decimal.NewNullDecimal(n)
	}
}

// value evaluates expr; ok is false when the attribute was absent or null
func (d *decoder) value(expr hcl.Expression) (cty.Value, bool) {
	if expr == nil {
		return cty.NilVal, false
	}
	val, diags := expr.Value(nil)
	d.diags = append(d.diags, diags...)
	if diags.HasErrors() || val.IsNull() {
		return cty.NilVal, false
	}
	return val, true
}

func (d *decoder) number(expr hcl.Expression, val cty.Value) (decimal.Decimal, bool) {
	num, err := convert.Convert(val, cty.Number)
	if err != nil || !num.IsKnown() || num.IsNull() {
		d.fail(expr, "expected a number")
		return decimal.Zero, false
	}
	n, err := decimal.NewFromString(num.AsBigFloat().Text('f', -1))
	if err != nil {
		d.fail(expr, err.Error())
		return decimal.Zero, false
	}
	return n, true
}

func (d *decoder) fail(expr hcl.Expression, detail string) {
	rng := expr.Range()
	d.diags = append(d.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Invalid pricing value",
		Detail:   detail,
		Subject:  &rng,
	})
}

func diagError(diags hcl.Diagnostics) error {
	var msgs []string
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		msg := diag.Summary
		if diag.Detail != "" {
			msg += ": " + diag.Detail
		}
		if diag.Subject != nil {
			msg = fmt.Sprintf("%s:%d: %s", diag.Subject.Filename, diag.Subject.Start.Line, msg)
		}
		msgs = append(msgs, msg)
	}
	return errors.Configuration("invalid pricing seed: %s", strings.Join(msgs, "; "))
}
