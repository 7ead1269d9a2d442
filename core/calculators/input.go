// Package calculators - Per-category price calculators
// Each calculator is a pure function over one category's input and the
// matching configuration section. Inputs are a closed set of variants; the
// only way to build one from a wire request is ParseInput.
package calculators

import (
	"strings"

	"github.com/shopspring/decimal"

	"cleanquote/core/types"
	"cleanquote/internal/errors"
)

// Input is a validated, category-specific quote input. The variant set is
// sealed: PVInput, StairwellInput, GlassInput and MaintenanceInput.
type Input interface {
	Category() types.Category
	sealed()
}

// PVInput prices photovoltaic module cleaning
type PVInput struct {
	Modules         int
	DifficultAccess bool
	VeryDirty       bool
}

// StairwellInput carries the fields of all three stairwell methods; the
// configured method decides which are read.
type StairwellInput struct {
	Units             int
	Floors            int
	FrequencyPerMonth decimal.NullDecimal
	Sqm               decimal.Decimal
	HasCellar         bool
	Windows           int

	// MethodHint is what the caller asked for. Display only.
	MethodHint string
}

// GlassInput prices glass cleaning by the request-selected method
type GlassInput struct {
	Method          types.GlassMethod
	CountIn         int
	CountOut        int
	SqmIn           decimal.Decimal
	SqmOut          decimal.Decimal
	Height          bool
	DifficultAccess bool
	FrameCleaning   bool
}

// MaintenanceInput prices maintenance by hours or area plus named extras
type MaintenanceInput struct {
	Sqm    decimal.Decimal
	Hours  decimal.Decimal
	Extras []string
}

func (PVInput) Category() types.Category          { return types.CategoryPV }
func (StairwellInput) Category() types.Category   { return types.CategoryStairwell }
func (GlassInput) Category() types.Category       { return types.CategoryGlass }
func (MaintenanceInput) Category() types.Category { return types.CategoryMaintenance }

func (PVInput) sealed()          {}
func (StairwellInput) sealed()   {}
func (GlassInput) sealed()       {}
func (MaintenanceInput) sealed() {}

// ParseInput validates a wire request and builds the variant for its
// service category. Only the fields of that category are checked.
func ParseInput(req types.QuoteRequest) (Input, error) {
	category, err := types.ParseCategory(req.ServiceCategory)
	if err != nil {
		return nil, err
	}

	switch category {
	case types.CategoryPV:
		if err := nonNegativeCounts(count{"pv_modules_count", req.PVModulesCount}); err != nil {
			return nil, err
		}
		return PVInput{
			Modules:         req.PVModulesCount,
			DifficultAccess: req.IsDifficultAccess,
			VeryDirty:       req.IsVeryDirty,
		}, nil

	case types.CategoryStairwell:
		err := nonNegativeCounts(
			count{"units", req.Units},
			count{"floors", req.Floors},
			count{"windows_count", req.WindowsCount},
		)
		if err != nil {
			return nil, err
		}
		if err := nonNegativeAmounts(amount{"sqm", req.Sqm}); err != nil {
			return nil, err
		}
		return StairwellInput{
			Units:             req.Units,
			Floors:            req.Floors,
			FrequencyPerMonth: req.FrequencyPerMonth,
			Sqm:               req.Sqm,
			HasCellar:         req.HasCellar,
			Windows:           req.WindowsCount,
			MethodHint:        strings.TrimSpace(req.CalculationMethod),
		}, nil

	case types.CategoryGlass:
		method, err := types.ParseGlassMethod(req.CalculationMethod)
		if err != nil {
			return nil, err
		}
		err = nonNegativeCounts(
			count{"glass_count_in", req.GlassCountIn},
			count{"glass_count_out", req.GlassCountOut},
		)
		if err != nil {
			return nil, err
		}
		err = nonNegativeAmounts(
			amount{"glass_sqm_in", req.GlassSqmIn},
			amount{"glass_sqm_out", req.GlassSqmOut},
		)
		if err != nil {
			return nil, err
		}
		return GlassInput{
			Method:          method,
			CountIn:         req.GlassCountIn,
			CountOut:        req.GlassCountOut,
			SqmIn:           req.GlassSqmIn,
			SqmOut:          req.GlassSqmOut,
			Height:          req.GlassHeightSurcharge,
			DifficultAccess: req.GlassDifficultAccess,
			FrameCleaning:   req.FrameCleaning,
		}, nil

	case types.CategoryMaintenance:
		err := nonNegativeAmounts(
			amount{"maintenance_sqm", req.MaintenanceSqm},
			amount{"hours_estimated", req.HoursEstimated},
		)
		if err != nil {
			return nil, err
		}
		extras := make([]string, 0, len(req.Extras))
		for _, name := range req.Extras {
			if name = strings.TrimSpace(name); name != "" {
				extras = append(extras, name)
			}
		}
		return MaintenanceInput{
			Sqm:    req.MaintenanceSqm,
			Hours:  req.HoursEstimated,
			Extras: extras,
		}, nil
	}

	return nil, errors.UnsupportedCategory(req.ServiceCategory)
}

type count struct {
	field string
	value int
}

type amount struct {
	field string
	value decimal.Decimal
}

func nonNegativeCounts(counts ...count) error {
	for _, c := range counts {
		if c.value < 0 {
			return errors.InvalidInput("%s must be >= 0, got %d", c.field, c.value).
				WithContext("field", c.field)
		}
	}
	return nil
}

func nonNegativeAmounts(amounts ...amount) error {
	for _, a := range amounts {
		if a.value.IsNegative() {
			return errors.InvalidInput("%s must be >= 0, got %s", a.field, a.value).
				WithContext("field", a.field)
		}
	}
	return nil
}
