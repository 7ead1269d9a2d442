package types

import (
	"strings"

	"cleanquote/internal/errors"
)

// Category is a service category. The set is closed: every switch over a
// Category must handle all four values.
type Category string

const (
	CategoryPV          Category = "pv"
	CategoryStairwell   Category = "stairwell"
	CategoryGlass       Category = "glass"
	CategoryMaintenance Category = "maintenance"
)

// Categories lists every supported category in display order
var Categories = []Category{CategoryPV, CategoryStairwell, CategoryGlass, CategoryMaintenance}

// String returns the wire name
func (c Category) String() string {
	return string(c)
}

// ParseCategory resolves a wire name to a Category
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryPV, CategoryStairwell, CategoryGlass, CategoryMaintenance:
		return c, nil
	default:
		return "", errors.UnsupportedCategory(s)
	}
}

// GlassMethod selects how a glass job is measured. Chosen per request.
type GlassMethod string

const (
	GlassByWindow GlassMethod = "window"
	GlassBySqm    GlassMethod = "sqm"
)

// ParseGlassMethod resolves a request's calculation_method; empty means window
func ParseGlassMethod(s string) (GlassMethod, error) {
	switch m := GlassMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return GlassByWindow, nil
	case GlassByWindow, GlassBySqm:
		return m, nil
	default:
		return "", errors.InvalidInput("unknown glass calculation_method %q (want window or sqm)", s)
	}
}

// StairwellMethod selects the stairwell pricing model. Chosen by configuration.
type StairwellMethod string

const (
	StairwellByUnits StairwellMethod = "units"
	StairwellBySqm   StairwellMethod = "sqm"
	StairwellFlat    StairwellMethod = "flat"
)

// ParseStairwellMethod resolves a configured method name
func ParseStairwellMethod(s string) (StairwellMethod, error) {
	switch m := StairwellMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case StairwellByUnits, StairwellBySqm, StairwellFlat:
		return m, nil
	default:
		return "", errors.Configuration("unknown stairwell method %q (want units, sqm or flat)", s)
	}
}
