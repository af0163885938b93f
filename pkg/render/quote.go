// Package render lays out priced quotes as PDF documents.
package render

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Company is the issuer block printed at the top of the document.
type Company struct {
	Name     string
	Address  string
	Phone    string
	Email    string
	TaxID    string
	Websites []string
}

// Line is one row of the item table. Text rows span the table and carry
// no amounts.
type Line struct {
	Text        bool
	Description string
	Unit        string
	Quantity    string
	UnitPrice   string
	Amount      string
}

// Quote holds already formatted values; the renderer does no arithmetic.
type Quote struct {
	Company     Company
	Title       string
	QuoteNo     string
	QuoteDate   string
	VersionNote string
	ClientName  string
	ClientPhone string
	ClientEmail string
	Lines       []Line
	Subtotal    string
	Discount    string
	TaxLabel    string
	Tax         string
	Total       string
	Note        string
}

const (
	rowHeight    = 7.0
	headerHeight = 12.0
)

var (
	bold   = props.Text{Style: fontstyle.Bold, Top: 1.5}
	normal = props.Text{Top: 1.5}
	right  = props.Text{Top: 1.5, Align: align.Right}
)

// QuotePDF renders q and returns the PDF bytes.
func QuotePDF(q Quote) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(12).
		WithTopMargin(15).
		WithRightMargin(12).
		Build()
	m := maroto.New(cfg)

	addHeader(m, q)
	addItems(m, q.Lines)
	addTotals(m, q)
	if strings.TrimSpace(q.Note) != "" {
		m.AddRows(text.NewRow(rowHeight, "Notes", bold))
		for _, l := range strings.Split(q.Note, "\n") {
			m.AddRows(text.NewRow(5, l, props.Text{Size: 9}))
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, q Quote) {
	title := q.Title
	if title == "" {
		title = "QUOTATION"
	}
	m.AddRows(text.NewRow(headerHeight, title, props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Center}))

	c := q.Company
	m.AddRow(rowHeight,
		text.NewCol(8, c.Name, bold),
		text.NewCol(4, "No. "+q.QuoteNo, right),
	)
	m.AddRow(rowHeight,
		text.NewCol(8, c.Address, normal),
		text.NewCol(4, q.QuoteDate, right),
	)
	contact := joinNonEmpty(" / ", c.Phone, c.Email, taxIDLabel(c.TaxID))
	m.AddRow(rowHeight,
		text.NewCol(8, contact, normal),
		text.NewCol(4, q.VersionNote, right),
	)
	if len(c.Websites) > 0 {
		m.AddRows(text.NewRow(rowHeight, strings.Join(c.Websites, "  "), props.Text{Size: 8, Top: 1.5}))
	}

	m.AddRows(line.NewRow(4))
	m.AddRow(rowHeight,
		text.NewCol(2, "Client", bold),
		text.NewCol(10, joinNonEmpty(" / ", q.ClientName, q.ClientPhone, q.ClientEmail), normal),
	)
	m.AddRows(line.NewRow(4))
}

func addItems(m core.Maroto, lines []Line) {
	m.AddRow(rowHeight,
		text.NewCol(5, "Description", bold),
		text.NewCol(1, "Unit", bold),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Top: 1.5, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Top: 1.5, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Top: 1.5, Align: align.Right}),
	)
	for _, l := range lines {
		if l.Text {
			m.AddRows(text.NewRow(rowHeight, l.Description, props.Text{Style: fontstyle.Italic, Top: 1.5}))
			continue
		}
		m.AddRow(rowHeight,
			text.NewCol(5, l.Description, normal),
			text.NewCol(1, l.Unit, normal),
			text.NewCol(2, l.Quantity, right),
			text.NewCol(2, l.UnitPrice, right),
			text.NewCol(2, l.Amount, right),
		)
	}
	m.AddRows(line.NewRow(4))
}

func addTotals(m core.Maroto, q Quote) {
	total := func(label, value string, p props.Text) {
		m.AddRow(rowHeight,
			text.NewCol(8, "", normal),
			text.NewCol(2, label, p),
			text.NewCol(2, value, right),
		)
	}
	total("Subtotal", q.Subtotal, normal)
	if q.Discount != "" && q.Discount != "0" {
		total("Discount", "-"+q.Discount, normal)
	}
	total(q.TaxLabel, q.Tax, normal)
	total("Total", q.Total, bold)
}

func taxIDLabel(id string) string {
	if id == "" {
		return ""
	}
	return "Tax ID " + id
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
