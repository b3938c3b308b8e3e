// Package export renders reports into downloadable documents.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Layouts used in exported documents.
const (
	DateLayout      = "02/01/2006"
	TimestampLayout = "02/01/2006 15:04"
)

// Options controls presentation only; the figures come from the report.
type Options struct {
	Currency string         // ISO code used for amounts
	Location *time.Location // zone used for the generation timestamp
}

// Render renders the report for the viewer in the requested format.
func Render(report *domain.Report, viewer domain.Principal, format domain.ExportFormat, opts Options) ([]byte, error) {
	switch format {
	case domain.ExportXLSX:
		return ReportXLSX(report, viewer, opts)
	case domain.ExportMarkdown:
		out, err := ReportMarkdown(report, viewer, opts)
		return []byte(out), err
	case domain.ExportCSV, "":
		return ReportCSV(report, viewer, opts)
	}
	return nil, fmt.Errorf("export: unsupported format %q", format)
}

// FileName is the suggested download name for a report export.
func FileName(report *domain.Report, format domain.ExportFormat) string {
	if format == "" {
		format = domain.ExportCSV
	}
	return fmt.Sprintf("petty-cash-report_%s_%s.%s",
		report.StartDate.Format(domain.DateLayout),
		report.EndDate.Format(domain.DateLayout),
		format)
}

// rowKind tells renderers how to style a row.
type rowKind int

const (
	rowPlain rowKind = iota
	rowBlank
	rowSection
	rowHeader
)

// row is one line of the document. Cells hold string, int or decimal.Decimal;
// decimals are amounts.
type row struct {
	kind  rowKind
	cells []any
}

func blank() row { return row{kind: rowBlank} }
func section(title string) row { return row{kind: rowSection, cells: []any{title}} }
func header(titles ...string) row {
	cells := make([]any, len(titles))
	for i, t := range titles {
		cells[i] = t
	}
	return row{kind: rowHeader, cells: cells}
}
func plain(cells ...any) row { return row{kind: rowPlain, cells: cells} }

// reportRows lays out the sections in order: title, summary, by category,
// by owner (administrators only) and detail.
func reportRows(report *domain.Report, viewer domain.Principal, loc *time.Location) []row {
	if loc == nil {
		loc = time.UTC
	}
	admin := viewer.IsAdmin
	s := report.Summary

	rows := []row{
		section("PETTY CASH REPORT"),
		plain("Period", report.StartDate.Format(DateLayout)+" - "+report.EndDate.Format(DateLayout)),
		plain("Generated at", report.GeneratedAt.In(loc).Format(TimestampLayout)),
		blank(),
		section("SUMMARY"),
		plain("Transactions", s.TotalCount),
		plain("Total expenses", s.TotalAmount),
		plain("Beginning balance", s.BeginningBalance),
		plain("Ending balance", s.EndingBalance),
		blank(),
		section("BY CATEGORY"),
		header("Category", "Total", "Count"),
	}
	for _, c := range s.ByCategory {
		rows = append(rows, plain(placeholder(c.CategoryName), c.Total, c.Count))
	}

	if admin {
		rows = append(rows, blank(), section("BY OWNER"), header("Owner", "Total", "Count"))
		for _, o := range s.ByOwner {
			rows = append(rows, plain(placeholder(o.OwnerName), o.Total, o.Count))
		}
	}

	titles := []string{"Date", "Description", "Category", "Amount"}
	if admin {
		titles = append(titles, "Owner")
	}
	rows = append(rows, blank(), section("DETAIL"), header(titles...))
	for _, e := range report.Transactions {
		r := plain(
			e.EffectiveDate.Format(DateLayout),
			sanitize(e.Description),
			placeholder(e.CategoryName),
			e.Amount,
		)
		if admin {
			r.cells = append(r.cells, placeholder(e.OwnerName))
		}
		rows = append(rows, r)
	}
	return rows
}

// text renders a cell as CSV text; amounts go through format.
func text(v any, format func(decimal.Decimal) string) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case decimal.Decimal:
		return format(v)
	}
	return fmt.Sprint(v)
}

func placeholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.UncategorizedLabel
	}
	return sanitize(s)
}

// sanitize stops spreadsheet applications from evaluating user text as a formula.
func sanitize(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		if s == domain.UncategorizedLabel {
			return s
		}
		return "'" + s
	}
	return s
}
