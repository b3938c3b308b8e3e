package services

import (
	"context"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
)

// ReportingService defines operations for generating period reports
type ReportingService interface {
	// Generate builds the report visible to the principal. Zero dates default to the
	// current month; a start after the end is a validation error.
	Generate(ctx context.Context, principal domain.Principal, filter domain.ReportFilter) (*domain.Report, error)

	// Export renders the report in the given format and returns it together with a
	// download file name.
	Export(ctx context.Context, principal domain.Principal, filter domain.ReportFilter, format domain.ExportFormat) ([]byte, string, error)
}
