package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleanquote/core/pricing"
	"cleanquote/core/types"
	"cleanquote/internal/errors"
)

const fullSeed = `
pv {
  surcharge_difficult_percent = 25
  surcharge_dirty_fix         = 17.5

  tier {
    min   = 51
    price = 7
  }
  tier {
    min   = 0
    max   = 50
    price = 9.9
  }
}

stairwell {
  method          = "sqm"
  threshold_sqm   = 200
  price_sqm_upto  = 5
  price_sqm_after = 3.5
  base_price_sqm  = 45
}

glass {
  price_window_in = 4.25
}

maintenance {
  price_sqm   = 2.8
  hourly_rate = 40
  extras = {
    carpet       = 25
    "deep clean" = 60.5
  }
}

city "Köln" {
  travel_fee      = 10
  min_order_value = 80
}

city "Bad Honnef" {
  id                = "honnef"
  travel_fee        = 22
  surcharge_percent = 10
}
`

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseFullSeed(t *testing.T) {
	seed, err := Parse([]byte(fullSeed), "pricing.hcl")
	require.NoError(t, err)
	assert.Equal(t, pricing.SourceSeed, seed.Source)

	pv := seed.Settings.PV
	require.Len(t, pv.Tiers, 2)
	assert.Equal(t, "0-50", pv.Tiers[0].Label())
	assert.True(t, pv.Tiers[0].Price.Equal(dec("9.9")))
	assert.True(t, pv.SurchargeDirtyFix.Equal(dec("17.5")))

	st := seed.Settings.Stairwell
	assert.Equal(t, types.StairwellBySqm, st.Method)
	assert.True(t, st.PriceSqmAfter.Decimal.Equal(dec("3.5")))
	// Untouched rates keep their defaults.
	assert.True(t, st.PricePerUnitWeekly.Valid)

	assert.True(t, seed.Settings.Glass.PriceWindowIn.Equal(dec("4.25")))
	assert.True(t, seed.Settings.Glass.PriceWindowOut.Equal(pricing.DefaultSettings().Glass.PriceWindowOut))

	extras := seed.Settings.Maintenance.Extras
	assert.True(t, extras["deep clean"].Equal(dec("60.5")))
	assert.True(t, extras["carpet"].Equal(dec("25")))

	require.Len(t, seed.Cities, 2)
	assert.Equal(t, "köln", seed.Cities[0].ID)
	assert.True(t, seed.Cities[0].MinOrderValue.Decimal.Equal(dec("80")))
	assert.False(t, seed.Cities[0].SurchargePercent.Valid)
	assert.Equal(t, "honnef", seed.Cities[1].ID)
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	seed, err := LoadFile(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, pricing.SourceDefault, seed.Source)
	assert.Empty(t, seed.Cities)
	assert.Equal(t, pricing.DefaultSettings(), seed.Settings)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`city "Bonn" { travel_fee = 20 }`), 0644))

	seed, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, seed.Cities, 1)
	assert.Equal(t, "bonn", seed.Cities[0].ID)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax error", `pv {`},
		{"unknown block", `garden { price = 1 }`},
		{"not a number", `glass { price_window_in = "cheap" }`},
		{"tier gap", `pv {
  tier {
    min   = 0
    max   = 10
    price = 12
  }
  tier {
    min   = 20
    price = 8
  }
}`},
		{"negative price", `glass { price_sqm_in = -1 }`},
		{"duplicate block", `stairwell {
  method = "flat"
}
stairwell {
  method = "units"
}`},
		{"unknown method", `stairwell { method = "per_floor" }`},
		{"duplicate city", `city "Köln" { travel_fee = 1 }
city "KÖLN" {
  id         = "other"
  travel_fee = 2
}`},
		{"extras not a map", `maintenance { extras = [1, 2] }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "pricing.hcl")
			require.Error(t, err)
			typ := errors.TypeOf(err)
			assert.True(t, typ == errors.TypeConfiguration || typ == errors.TypeConflict, "type %s", typ)
		})
	}
}

func TestCityID(t *testing.T) {
	assert.Equal(t, "bad-honnef", CityID("  Bad   Honnef "))
	assert.Equal(t, "köln", CityID("Köln"))
}
