package export

import (
	"bytes"
	"fmt"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the report.
const SheetName = "Report"

// amountFormat shows two decimals with thousands separators.
const amountFormat = "#,##0.00"

// ReportXLSX renders the report as a single-sheet workbook. Amounts are numeric
// cells so the sheet can be summed; their currency is noted in the header row.
func ReportXLSX(report *domain.Report, viewer domain.Principal, opts Options) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("export: nil report")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("export: name sheet: %w", err)
	}

	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(amountFormat)})
	if err != nil {
		return nil, fmt.Errorf("export: amount style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("export: header style: %w", err)
	}

	rows := reportRows(report, viewer, opts.Location)
	if opts.Currency != "" {
		rows[0].cells = append(rows[0].cells, opts.Currency)
	}

	for i, r := range rows {
		rowNum := i + 1
		for j, v := range r.cells {
			cell, err := excelize.CoordinatesToCellName(j+1, rowNum)
			if err != nil {
				return nil, fmt.Errorf("export: cell name: %w", err)
			}
			if d, ok := v.(decimal.Decimal); ok {
				if err := f.SetCellFloat(SheetName, cell, d.InexactFloat64(), -1, 64); err != nil {
					return nil, fmt.Errorf("export: write %s: %w", cell, err)
				}
				if err := f.SetCellStyle(SheetName, cell, cell, amountStyle); err != nil {
					return nil, fmt.Errorf("export: style %s: %w", cell, err)
				}
				continue
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return nil, fmt.Errorf("export: write %s: %w", cell, err)
			}
		}
		if (r.kind == rowSection || r.kind == rowHeader) && len(r.cells) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(r.cells), rowNum)
			first, _ := excelize.CoordinatesToCellName(1, rowNum)
			if err := f.SetCellStyle(SheetName, first, last, boldStyle); err != nil {
				return nil, fmt.Errorf("export: style row %d: %w", rowNum, err)
			}
		}
	}

	widths := map[string]float64{"A": 20, "B": 40, "C": 22, "D": 16, "E": 20}
	for col, w := range widths {
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("export: column width: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func strPtr(s string) *string { return &s }
