package primitives

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleanquote/internal/errors"
)

func defaultTiers() []Tier {
	return []Tier{
		{Min: 0, Max: Bound(10), Price: decimal.NewFromInt(12)},
		{Min: 11, Max: Bound(25), Price: decimal.NewFromInt(10)},
		{Min: 26, Price: decimal.NewFromInt(8)},
	}
}

func TestPriceForUnitsPicksContainingTier(t *testing.T) {
	tests := []struct {
		units int
		label string
		total string
	}{
		{0, "0-10", "0"},
		{10, "0-10", "120"},
		{11, "11-25", "110"},
		{15, "11-25", "150"},
		{25, "11-25", "250"},
		{26, "26+", "208"},
		{1000, "26+", "8000"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			tier, total, err := CalculateTierCost(defaultTiers(), tt.units)
			require.NoError(t, err)
			assert.Equal(t, tt.label, tier.Label())
			assert.True(t, total.Equal(decimal.RequireFromString(tt.total)), "got %s", total)
		})
	}
}

// Every volume of a validated table matches exactly one tier.
func TestValidatedTablesAreTotal(t *testing.T) {
	tables := [][]Tier{
		defaultTiers(),
		{{Min: 0, Price: decimal.NewFromInt(5)}},
		{
			{Min: 0, Max: Bound(0), Price: decimal.NewFromInt(50)},
			{Min: 1, Max: Bound(1), Price: decimal.NewFromInt(20)},
			{Min: 2, Max: Bound(99), Price: decimal.NewFromInt(9)},
			{Min: 100, Price: decimal.NewFromInt(7)},
		},
	}

	for _, tiers := range tables {
		require.NoError(t, ValidateTiers(tiers))
		for n := 0; n <= 250; n++ {
			matches := 0
			for _, tier := range tiers {
				if tier.Contains(n) {
					matches++
				}
			}
			assert.Equal(t, 1, matches, "volume %d", n)

			_, err := PriceForUnits(tiers, n)
			assert.NoError(t, err)
		}
	}
}

func TestValidateTiersRejectsBrokenTables(t *testing.T) {
	tests := []struct {
		name  string
		tiers []Tier
	}{
		{"empty", nil},
		{"starts above zero", []Tier{{Min: 1, Price: decimal.NewFromInt(1)}}},
		{"gap", []Tier{
			{Min: 0, Max: Bound(10), Price: decimal.NewFromInt(12)},
			{Min: 12, Price: decimal.NewFromInt(10)},
		}},
		{"overlap", []Tier{
			{Min: 0, Max: Bound(10), Price: decimal.NewFromInt(12)},
			{Min: 10, Price: decimal.NewFromInt(10)},
		}},
		{"bounded last tier", []Tier{
			{Min: 0, Max: Bound(10), Price: decimal.NewFromInt(12)},
		}},
		{"unbounded middle tier", []Tier{
			{Min: 0, Price: decimal.NewFromInt(12)},
			{Min: 11, Price: decimal.NewFromInt(10)},
		}},
		{"max below min", []Tier{
			{Min: 0, Max: Bound(-1), Price: decimal.NewFromInt(12)},
			{Min: 0, Price: decimal.NewFromInt(10)},
		}},
		{"negative price", []Tier{{Min: 0, Price: decimal.NewFromInt(-1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTiers(tt.tiers)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeConfiguration))
		})
	}
}

func TestPriceForUnitsGapIsConfigurationError(t *testing.T) {
	tiers := []Tier{{Min: 0, Max: Bound(10), Price: decimal.NewFromInt(12)}}

	_, err := PriceForUnits(tiers, 11)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfiguration))

	_, err = PriceForUnits(tiers, -1)
	assert.True(t, errors.IsType(err, errors.TypeInvalidInput))
}
