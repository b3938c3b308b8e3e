package export

import (
	"bytes"
	"fmt"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/SscSPs/petty_cash_ledger/internal/utils"
)

// group is a section title with the rows up to the next title.
type group struct {
	title  string
	header []string
	body   [][]string
}

func groups(rows []row, format func(any) string) []group {
	var out []group
	for _, r := range rows {
		switch r.kind {
		case rowSection:
			out = append(out, group{title: format(r.cells[0])})
		case rowHeader, rowPlain:
			if len(out) == 0 {
				out = append(out, group{})
			}
			g := &out[len(out)-1]
			cells := make([]string, len(r.cells))
			for i, c := range r.cells {
				cells[i] = format(c)
			}
			if r.kind == rowHeader {
				g.header = cells
			} else {
				g.body = append(g.body, cells)
			}
		}
	}
	return out
}

// ReportMarkdown renders the report as a Markdown document with one table per section.
func ReportMarkdown(report *domain.Report, viewer domain.Principal, opts Options) (string, error) {
	if report == nil {
		return "", fmt.Errorf("export: nil report")
	}
	money := utils.NewAmountFormatter(opts.Currency)
	cell := func(v any) string { return escapeCell(text(v, money.Format)) }

	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	for i, g := range groups(reportRows(report, viewer, opts.Location), cell) {
		if i == 0 {
			doc.H1(titleCase(g.title))
			for _, kv := range g.body {
				doc.PlainText(strings.Join(kv, ": "))
				doc.LF()
			}
			continue
		}
		doc.H2(titleCase(g.title))
		header := g.header
		if header == nil {
			header = []string{"Item", "Value"}
		}
		if len(g.body) == 0 {
			doc.PlainText("No entries.")
			doc.LF()
			continue
		}
		doc.Table(md.TableSet{Header: header, Rows: g.body})
	}
	return doc.String(), nil
}

// titleCase turns "BY CATEGORY" into "By category".
func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
