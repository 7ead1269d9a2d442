package types

import "github.com/shopspring/decimal"

// QuoteRequest is a single quote request as sent by the UI. Only the fields
// of the requested category are read.
type QuoteRequest struct {
	ServiceCategory    string `json:"service_category"`
	City               string `json:"city,omitempty"`
	IsExistingCustomer bool   `json:"is_existing_customer"`

	// CalculationMethod selects the glass method. For stairwell it is a
	// display hint only; configuration decides.
	CalculationMethod string `json:"calculation_method,omitempty"`

	// PV
	PVModulesCount    int  `json:"pv_modules_count,omitempty"`
	IsDifficultAccess bool `json:"is_difficult_access,omitempty"`
	IsVeryDirty       bool `json:"is_very_dirty,omitempty"`

	// Stairwell
	Units             int                 `json:"units,omitempty"`
	Floors            int                 `json:"floors,omitempty"`
	FrequencyPerMonth decimal.NullDecimal `json:"frequency_per_month"`
	Sqm               decimal.Decimal     `json:"sqm"`
	HasCellar         bool                `json:"has_cellar,omitempty"`
	WindowsCount      int                 `json:"windows_count,omitempty"`

	// Glass
	GlassSqmIn           decimal.Decimal `json:"glass_sqm_in"`
	GlassSqmOut          decimal.Decimal `json:"glass_sqm_out"`
	GlassCountIn         int             `json:"glass_count_in,omitempty"`
	GlassCountOut        int             `json:"glass_count_out,omitempty"`
	GlassHeightSurcharge bool            `json:"glass_height_surcharge,omitempty"`
	GlassDifficultAccess bool            `json:"glass_difficult_access,omitempty"`
	FrameCleaning        bool            `json:"frame_cleaning,omitempty"`

	// Maintenance
	MaintenanceSqm decimal.Decimal `json:"maintenance_sqm"`
	HoursEstimated decimal.Decimal `json:"hours_estimated"`
	Extras         []string        `json:"extras,omitempty"`
}

// Details is the open, display-only breakdown attached to a quote
type Details map[string]any

// QuoteResult is the priced answer to a QuoteRequest
type QuoteResult struct {
	NetPrice   decimal.Decimal `json:"net_price"`
	TravelFee  decimal.Decimal `json:"travel_fee"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Details    Details         `json:"details"`
}
