package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cleanquote/core/engine"
	"cleanquote/core/pricing"
	"cleanquote/core/types"
)

func testStore(t *testing.T) *pricing.Store {
	t.Helper()
	settings := pricing.DefaultSettings()
	settings.Maintenance.Extras = map[string]decimal.Decimal{
		"Fenster innen":  decimal.NewFromInt(25),
		"Grundreinigung": decimal.NewFromInt(60),
	}
	store, err := pricing.NewStore(settings, []pricing.CityPricing{
		{
			ID:            "koeln",
			CityName:      "Köln",
			TravelFee:     decimal.RequireFromString("12.5"),
			MinOrderValue: decimal.NewNullDecimal(decimal.NewFromInt(80)),
		},
		{
			ID:        "formula",
			CityName:  "=HYPERLINK(\"x\")",
			TravelFee: decimal.NewFromInt(5),
		},
	}, pricing.SourceDefault)
	require.NoError(t, err)
	return store
}

func TestQuotePDF(t *testing.T) {
	eng := engine.NewEngine(testStore(t))
	q, err := eng.Quote(context.Background(), types.QuoteRequest{
		ServiceCategory: "pv",
		City:            "Köln",
		PVModulesCount:  3,
	})
	require.NoError(t, err)
	// 3 modules fall under the minimum order value
	_, adjusted := q.Result.Details["min_order_adjustment"]
	require.True(t, adjusted)

	pdf, err := QuotePDF(QuoteDocument{Issued: time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), Quote: q})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestQuotePDFRequiresQuote(t *testing.T) {
	_, err := QuotePDF(QuoteDocument{})
	assert.Error(t, err)
}

func TestPriceListXLSX(t *testing.T) {
	snap := testStore(t).Snapshot()

	data, err := PriceListXLSX(snap)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SettingsSheet, CitiesSheet}, f.GetSheetList())

	header, err := f.GetRows(SettingsSheet)
	require.NoError(t, err)
	require.Greater(t, len(header), 3)
	assert.Equal(t, []string{"Section", "Field", "Value"}, header[2])
	assert.Equal(t, []string{"pv", "tier 0-10", "12"}, header[3])

	rows, err := f.GetRows(CitiesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "koeln", rows[1][0])
	assert.Equal(t, "Köln", rows[1][1])
	assert.Equal(t, "12.5", rows[1][2])
	assert.Equal(t, "80", rows[1][3])
	assert.Equal(t, "'=HYPERLINK(\"x\")", rows[2][1])
}

func TestSettingRows(t *testing.T) {
	settings := pricing.DefaultSettings()
	settings.Stairwell.FlatPrice = decimal.NullDecimal{}
	settings.Maintenance.Extras = map[string]decimal.Decimal{
		"b": decimal.NewFromInt(2),
		"a": decimal.NewFromInt(1),
	}

	rows := SettingRows(settings)

	var fields []string
	for _, r := range rows {
		fields = append(fields, r.Section+"."+r.Field)
		if r.Field == "flat_price" {
			assert.False(t, r.Value.Valid)
		}
		if r.Field == "method" {
			assert.Equal(t, "units", r.Text)
		}
	}
	assert.Contains(t, fields, "pv.tier 26+")
	assert.Contains(t, fields, "glass.surcharge_frame_percent")
	// Extras are listed in name order at the end
	assert.Equal(t, []string{"maintenance.extra a", "maintenance.extra b"}, fields[len(fields)-2:])
}

func TestBreakdownLines(t *testing.T) {
	lines := BreakdownLines(types.Details{
		"surcharge_dirty": decimal.NewFromInt(15),
		"count":           12,
		"frame_cleaning":  true,
		"extras":          map[string]decimal.Decimal{"y": decimal.NewFromInt(2), "x": decimal.RequireFromString("1.5")},
		"method_hint":     nil,
	})

	require.Len(t, lines, 5)
	assert.Equal(t, BreakdownLine{Key: "count", Label: "Count", Value: "12"}, lines[0])
	assert.Equal(t, BreakdownLine{Key: "extras", Label: "Extras", Value: "x: 1.50, y: 2.00"}, lines[1])
	assert.Equal(t, "yes", lines[2].Value)
	assert.Equal(t, "-", lines[3].Value)
	assert.Equal(t, BreakdownLine{Key: "surcharge_dirty", Label: "Surcharge dirty", Value: "15"}, lines[4])
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "133.40 EUR", Money(decimal.RequireFromString("133.4")))
	assert.Equal(t, "0.00 EUR", Money(decimal.Zero))
}

func TestSanitizeExcelCell(t *testing.T) {
	assert.Equal(t, "Bonn", sanitizeExcelCell("Bonn"))
	assert.Equal(t, "'-1", sanitizeExcelCell("-1"))
	assert.Equal(t, "'@cmd", sanitizeExcelCell("@cmd"))
	assert.Equal(t, "", sanitizeExcelCell(""))
}
