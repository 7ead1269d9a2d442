package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"cleanquote/core/types"
)

// Travel detail notes shown to the operator
const (
	NoCityPricing         = "no city pricing configured"
	ExistingCustomerWaive = "existing customer, travel fee waived"
)

// CityLookup finds city pricing by name
type CityLookup interface {
	LookupCity(name string) (CityPricing, bool)
}

// Travel is the resolved travel component of a quote
type Travel struct {
	// Fee is the travel fee to add to the net price
	Fee decimal.Decimal

	// City is the matched record, if any. A match still applies its minimum
	// order value for existing customers.
	City    CityPricing
	Matched bool

	// Details is the human-readable explanation
	Details string
}

// MinOrderValue returns the matched city's minimum order value, zero if unset
func (t Travel) MinOrderValue() decimal.Decimal {
	if !t.Matched || !t.City.MinOrderValue.Valid {
		return decimal.Zero
	}
	return t.City.MinOrderValue.Decimal
}

// ResolveTravel computes the travel fee for a city. An unknown city is not
// an error: the fee is zero and the details say why.
func ResolveTravel(cities CityLookup, city string, existingCustomer bool) Travel {
	match, ok := cities.LookupCity(city)
	travel := Travel{Fee: decimal.Zero, City: match, Matched: ok}

	switch {
	case existingCustomer:
		travel.Details = ExistingCustomerWaive
	case !ok:
		travel.Details = NoCityPricing
	default:
		travel.Fee = match.TravelFee
		travel.Details = fmt.Sprintf("travel fee for %s", match.CityName)
		if match.SurchargePercent.Valid && !match.SurchargePercent.Decimal.IsZero() {
			travel.Fee = travel.Fee.Add(types.Percent(match.TravelFee, match.SurchargePercent.Decimal))
			travel.Details = fmt.Sprintf("travel fee for %s incl. %s%% surcharge",
				match.CityName, match.SurchargePercent.Decimal)
		}
	}
	return travel
}
