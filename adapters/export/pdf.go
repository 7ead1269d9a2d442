// Package export renders quotes and the price list as documents.
package export

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"cleanquote/core/engine"
)

// QuoteDocument is what goes on a quote PDF
type QuoteDocument struct {
	Company string
	Issued  time.Time
	Quote   *engine.Quote
}

var (
	grey     = &props.Color{Red: 100, Green: 100, Blue: 100}
	headerBg = &props.Color{Red: 230, Green: 233, Blue: 237}
	altBg    = &props.Color{Red: 248, Green: 249, Blue: 250}
)

// QuotePDF renders a quote with its breakdown and totals and returns the
// raw PDF bytes
func QuotePDF(doc QuoteDocument) ([]byte, error) {
	if doc.Quote == nil {
		return nil, fmt.Errorf("quote is required")
	}
	if doc.Company == "" {
		doc.Company = "CleanQuote"
	}

	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   grey,
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, doc)
	addRequestSummary(m, doc.Quote)
	addBreakdown(m, doc.Quote)
	addTotals(m, doc.Quote)
	addFooter(m, doc.Quote)

	pdf, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate quote PDF: %w", err)
	}
	return pdf.GetBytes(), nil
}

func addHeader(m core.Maroto, doc QuoteDocument) {
	m.AddRows(
		row.New(10).Add(
			col.New(6).Add(text.New(doc.Company, props.Text{
				Size:  14,
				Style: fontstyle.Bold,
				Align: align.Left,
			})),
			col.New(6).Add(text.New("QUOTE", props.Text{
				Size:  14,
				Style: fontstyle.Bold,
				Align: align.Right,
			})),
		),
		row.New(6).Add(
			col.New(12).Add(text.New("Date: "+doc.Issued.Format("2006-01-02"), props.Text{
				Size:  8,
				Align: align.Right,
				Color: grey,
			})),
		),
	)
	m.AddRows(row.New(4))
}

func addRequestSummary(m core.Maroto, q *engine.Quote) {
	label := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left, Color: grey}
	value := props.Text{Size: 9, Align: align.Left}

	city := q.Request.City
	if city == "" {
		city = "-"
	}
	customer := "new customer"
	if q.Request.IsExistingCustomer {
		customer = "existing customer"
	}

	for _, kv := range [][2]string{
		{"Service", q.Category.String()},
		{"City", city},
		{"Customer", customer},
	} {
		m.AddRows(row.New(6).Add(
			col.New(3).Add(text.New(kv[0], label)),
			col.New(9).Add(text.New(kv[1], value)),
		))
	}
	m.AddRows(row.New(4))
}

func addBreakdown(m core.Maroto, q *engine.Quote) {
	headerText := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left}
	headerRight := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}
	headerCell := &props.Cell{BackgroundColor: headerBg}

	m.AddRows(row.New(7).Add(
		col.New(8).Add(text.New("Item", headerText)).WithStyle(headerCell),
		col.New(4).Add(text.New("Value", headerRight)).WithStyle(headerCell),
	))

	for i, line := range BreakdownLines(q.Result.Details) {
		var cellStyle *props.Cell
		if i%2 == 1 {
			cellStyle = &props.Cell{BackgroundColor: altBg}
		}
		m.AddRows(row.New(6).Add(
			col.New(8).Add(text.New(line.Label, props.Text{Size: 8, Align: align.Left})).WithStyle(cellStyle),
			col.New(4).Add(text.New(line.Value, props.Text{Size: 8, Align: align.Right})).WithStyle(cellStyle),
		))
	}
	m.AddRows(row.New(4))
}

func addTotals(m core.Maroto, q *engine.Quote) {
	label := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	value := props.Text{Size: 9, Align: align.Right}

	m.AddRows(
		row.New(6).Add(
			col.New(9).Add(text.New("Net price", label)),
			col.New(3).Add(text.New(Money(q.Result.NetPrice), value)),
		),
		row.New(6).Add(
			col.New(9).Add(text.New("Travel fee", label)),
			col.New(3).Add(text.New(Money(q.Result.TravelFee), value)),
		),
	)
	if adj, ok := q.Result.Details["min_order_adjustment"]; ok {
		m.AddRows(row.New(6).Add(
			col.New(9).Add(text.New("Minimum order adjustment", label)),
			col.New(3).Add(text.New(FormatValue(adj), value)),
		))
	}

	grand := &props.Cell{BackgroundColor: headerBg}
	m.AddRows(row.New(8).Add(
		col.New(9).Add(text.New("Total", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right})).WithStyle(grand),
		col.New(3).Add(text.New(Money(q.Result.TotalPrice), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right})).WithStyle(grand),
	))
}

func addFooter(m core.Maroto, q *engine.Quote) {
	m.AddRows(row.New(8))
	m.AddRows(row.New(5).Add(
		col.New(12).Add(text.New(
			fmt.Sprintf("Pricing version %d (%s). All prices net.", q.Version, q.ContentHash.Short()),
			props.Text{Size: 7, Align: align.Left, Color: grey},
		)),
	))
}
