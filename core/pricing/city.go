package pricing

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// CityPricing is the travel pricing of one city
type CityPricing struct {
	ID               string              `json:"id"`
	CityName         string              `json:"city_name"`
	TravelFee        decimal.Decimal     `json:"travel_fee"`
	MinOrderValue    decimal.NullDecimal `json:"min_order_value"`
	SurchargePercent decimal.NullDecimal `json:"surcharge_percent"`
}

// NormalizeCityName folds case and surrounding whitespace for lookups
func NormalizeCityName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func cloneCities(cities []CityPricing) []CityPricing {
	if cities == nil {
		return []CityPricing{}
	}
	return slices.Clone(cities)
}

func indexOfCity(cities []CityPricing, id string) int {
	return slices.IndexFunc(cities, func(c CityPricing) bool { return c.ID == id })
}
