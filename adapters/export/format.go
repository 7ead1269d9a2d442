package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"cleanquote/core/determinism"
	"cleanquote/core/types"
)

// BreakdownLine is one labelled row of a quote breakdown
type BreakdownLine struct {
	Key   string
	Label string
	Value string
}

// BreakdownLines flattens quote details into rows ordered by key
func BreakdownLines(details types.Details) []BreakdownLine {
	lines := make([]BreakdownLine, 0, len(details))
	determinism.RangeMapSorted(details, func(key string, v any) bool {
		lines = append(lines, BreakdownLine{Key: key, Label: Label(key), Value: FormatValue(v)})
		return true
	})
	return lines
}

// Label turns a details key into a heading, e.g. "price_per_module" → "Price per module"
func Label(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Money formats an amount with two decimals
func Money(d decimal.Decimal) string {
	return d.StringFixed(2) + " EUR"
}

// FormatValue renders a details value for display
func FormatValue(v any) string {
	switch v := v.(type) {
	case decimal.Decimal:
		return v.String()
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case map[string]decimal.Decimal:
		parts := make([]string, 0, len(v))
		determinism.RangeMapSorted(v, func(k string, d decimal.Decimal) bool {
			parts = append(parts, k+": "+d.StringFixed(2))
			return true
		})
		return strings.Join(parts, ", ")
	case nil:
		return "-"
	default:
		return fmt.Sprint(v)
	}
}
