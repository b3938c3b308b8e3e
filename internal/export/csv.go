package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/SscSPs/petty_cash_ledger/internal/utils"
)

// utf8BOM makes spreadsheet applications detect the encoding.
const utf8BOM = "\ufeff"

// ReportCSV renders the report as CSV for the viewer.
func ReportCSV(report *domain.Report, viewer domain.Principal, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteReportCSV(&buf, report, viewer, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteReportCSV writes the report as CSV, amounts formatted in opts.Currency.
func WriteReportCSV(w io.Writer, report *domain.Report, viewer domain.Principal, opts Options) error {
	if report == nil {
		return fmt.Errorf("export: nil report")
	}
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("export: write BOM: %w", err)
	}

	money := utils.NewAmountFormatter(opts.Currency)
	rows := reportRows(report, viewer, opts.Location)
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		record := make([]string, len(r.cells))
		for i, c := range r.cells {
			record[i] = text(c, money.Format)
		}
		records = append(records, record)
	}

	if err := csv.NewWriter(w).WriteAll(records); err != nil {
		return fmt.Errorf("export: write csv: %w", err)
	}
	return nil
}
