package export

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"cleanquote/core/determinism"
	"cleanquote/core/pricing"
)

// Sheet names of the price list workbook
const (
	SettingsSheet = "Settings"
	CitiesSheet   = "Cities"
)

// SettingRow is one field of the pricing configuration as listed in the
// price list
type SettingRow struct {
	Section string
	Field   string
	Value   decimal.NullDecimal
	Text    string
}

// SettingRows flattens the configuration into section/field/value rows
func SettingRows(s pricing.Settings) []SettingRow {
	var rows []SettingRow
	add := func(section pricing.Section, field string, v decimal.Decimal) {
		rows = append(rows, SettingRow{Section: string(section), Field: field, Value: decimal.NewNullDecimal(v)})
	}
	addNull := func(section pricing.Section, field string, v decimal.NullDecimal) {
		rows = append(rows, SettingRow{Section: string(section), Field: field, Value: v})
	}

	for _, tier := range s.PV.Tiers {
		add(pricing.SectionPV, "tier "+tier.Label(), tier.Price)
	}
	add(pricing.SectionPV, "surcharge_difficult_percent", s.PV.SurchargeDifficultPercent)
	add(pricing.SectionPV, "surcharge_dirty_fix", s.PV.SurchargeDirtyFix)

	st := s.Stairwell
	rows = append(rows, SettingRow{Section: string(pricing.SectionStairwell), Field: "method", Text: string(st.Method)})
	addNull(pricing.SectionStairwell, "price_per_unit_weekly", st.PricePerUnitWeekly)
	addNull(pricing.SectionStairwell, "price_per_unit_biweekly", st.PricePerUnitBiweekly)
	addNull(pricing.SectionStairwell, "price_per_unit_monthly", st.PricePerUnitMonthly)
	addNull(pricing.SectionStairwell, "base_price_obj", st.BasePriceObj)
	addNull(pricing.SectionStairwell, "threshold_sqm", st.ThresholdSqm)
	addNull(pricing.SectionStairwell, "price_sqm_upto", st.PriceSqmUpto)
	addNull(pricing.SectionStairwell, "price_sqm_after", st.PriceSqmAfter)
	addNull(pricing.SectionStairwell, "base_price_sqm", st.BasePriceSqm)
	addNull(pricing.SectionStairwell, "flat_price", st.FlatPrice)
	addNull(pricing.SectionStairwell, "cellar_price", st.CellarPrice)
	addNull(pricing.SectionStairwell, "window_price", st.WindowPrice)

	g := s.Glass
	add(pricing.SectionGlass, "price_window_in", g.PriceWindowIn)
	add(pricing.SectionGlass, "price_window_out", g.PriceWindowOut)
	add(pricing.SectionGlass, "surcharge_height", g.SurchargeHeight)
	add(pricing.SectionGlass, "surcharge_difficult_percent", g.SurchargeDifficultPercent)
	add(pricing.SectionGlass, "price_sqm_in", g.PriceSqmIn)
	add(pricing.SectionGlass, "price_sqm_out", g.PriceSqmOut)
	add(pricing.SectionGlass, "surcharge_frame_percent", g.SurchargeFramePercent)

	add(pricing.SectionMaintenance, "price_sqm", s.Maintenance.PriceSqm)
	add(pricing.SectionMaintenance, "hourly_rate", s.Maintenance.HourlyRate)
	determinism.RangeMapSorted(s.Maintenance.Extras, func(name string, price decimal.Decimal) bool {
		add(pricing.SectionMaintenance, "extra "+name, price)
		return true
	})
	return rows
}

// PriceListXLSX renders a snapshot's configuration and cities as a workbook
func PriceListXLSX(snap *pricing.Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SettingsSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	if _, err := f.NewSheet(CitiesSheet); err != nil {
		return nil, fmt.Errorf("create cities sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create body style: %w", err)
	}

	if err := writeSettingsSheet(f, snap, headerStyle, bodyStyle); err != nil {
		return nil, err
	}
	if err := writeCitiesSheet(f, snap, headerStyle, bodyStyle); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSettingsSheet(f *excelize.File, snap *pricing.Snapshot, headerStyle, bodyStyle int) error {
	sheet := SettingsSheet
	for col, width := range map[string]float64{"A": 14, "B": 32, "C": 14} {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Pricing version %d (%s)", snap.Version(), snap.ContentHash().Short()))

	if err := f.SetSheetRow(sheet, "A3", &[]any{"Section", "Field", "Value"}); err != nil {
		return fmt.Errorf("write settings header: %w", err)
	}
	f.SetCellStyle(sheet, "A3", "C3", headerStyle)

	r := 4
	for _, row := range SettingRows(snap.Settings()) {
		values := []any{row.Section, row.Field, cellValue(row)}
		cell := fmt.Sprintf("A%d", r)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write settings row %d: %w", r, err)
		}
		f.SetCellStyle(sheet, cell, fmt.Sprintf("C%d", r), bodyStyle)
		r++
	}
	return nil
}

func writeCitiesSheet(f *excelize.File, snap *pricing.Snapshot, headerStyle, bodyStyle int) error {
	sheet := CitiesSheet
	for col, width := range map[string]float64{"A": 38, "B": 24, "C": 12, "D": 16, "E": 14} {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	if err := f.SetSheetRow(sheet, "A1", &[]any{"ID", "City", "Travel fee", "Min order value", "Surcharge %"}); err != nil {
		return fmt.Errorf("write cities header: %w", err)
	}
	f.SetCellStyle(sheet, "A1", "E1", headerStyle)

	for i, c := range snap.Cities() {
		r := i + 2
		values := []any{
			sanitizeExcelCell(c.ID),
			sanitizeExcelCell(c.CityName),
			c.TravelFee.InexactFloat64(),
			nullFloat(c.MinOrderValue),
			nullFloat(c.SurchargePercent),
		}
		cell := fmt.Sprintf("A%d", r)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write city row %d: %w", r, err)
		}
		f.SetCellStyle(sheet, cell, fmt.Sprintf("E%d", r), bodyStyle)
	}
	return nil
}

func cellValue(row SettingRow) any {
	if row.Text != "" {
		return row.Text
	}
	return nullFloat(row.Value)
}

// nullFloat leaves unset values as empty cells
func nullFloat(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
