package dto

import (
	"strings"
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportParams are the query parameters of GET /reports and GET /reports/export.
// Missing dates default to the current month.
type ReportParams struct {
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	CategoryID string `form:"categoryId"`
	OwnerID    string `form:"ownerId"` // administrators only
}

// ToFilter converts the parameters into a domain.ReportFilter.
func (p ReportParams) ToFilter() (domain.ReportFilter, error) {
	var f domain.ReportFilter
	start, err := parseOptionalDate("startDate", p.StartDate)
	if err != nil {
		return f, err
	}
	end, err := parseOptionalDate("endDate", p.EndDate)
	if err != nil {
		return f, err
	}
	if start != nil {
		f.StartDate = *start
	}
	if end != nil {
		f.EndDate = *end
	}
	f.CategoryID = p.CategoryID
	f.OwnerID = p.OwnerID
	return f, nil
}

// ExportParams are the query parameters of GET /reports/export.
type ExportParams struct {
	ReportParams
	Format string `form:"format"` // csv (default), xlsx or md
}

// ParseExportFormat accepts "csv", "xlsx" and "md" case-insensitively; empty means csv.
func ParseExportFormat(s string) (domain.ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(domain.ExportCSV):
		return domain.ExportCSV, nil
	case string(domain.ExportXLSX):
		return domain.ExportXLSX, nil
	case string(domain.ExportMarkdown), "markdown":
		return domain.ExportMarkdown, nil
	}
	return "", apperrors.NewValidationError("format", "must be csv, xlsx or md")
}

// ReportEntryResponse is one detail line of a report.
type ReportEntryResponse struct {
	TransactionID string          `json:"transactionID"`
	OwnerID       string          `json:"ownerID"`
	OwnerName     string          `json:"ownerName,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	CategoryID    string          `json:"categoryID,omitempty"`
	CategoryName  string          `json:"categoryName"`
	EffectiveDate string          `json:"effectiveDate"`
	HasReceipt    bool            `json:"hasReceipt"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ReportResponse defines the data returned for a report.
type ReportResponse struct {
	StartDate    string                `json:"startDate"`
	EndDate      string                `json:"endDate"`
	CategoryID   string                `json:"categoryID,omitempty"`
	OwnerID      string                `json:"ownerID,omitempty"`
	AdminView    bool                  `json:"adminView"`
	GeneratedAt  time.Time             `json:"generatedAt"`
	Transactions []ReportEntryResponse `json:"transactions"`
	Summary      domain.ReportSummary  `json:"summary"`
}

// ToReportResponse converts a domain.Report to ReportResponse DTO
func ToReportResponse(r *domain.Report) ReportResponse {
	entries := make([]ReportEntryResponse, len(r.Transactions))
	for i, e := range r.Transactions {
		entry := ReportEntryResponse{
			TransactionID: e.TransactionID,
			OwnerID:       e.OwnerID,
			Amount:        e.Amount,
			Description:   e.Description,
			CategoryID:    e.CategoryID,
			CategoryName:  e.CategoryName,
			EffectiveDate: FormatDate(e.EffectiveDate),
			HasReceipt:    e.HasReceipt(),
			CreatedAt:     e.CreatedAt,
		}
		if r.AdminView {
			entry.OwnerName = e.OwnerName
		}
		entries[i] = entry
	}
	summary := r.Summary
	if !r.AdminView {
		summary.ByOwner = nil
	}
	return ReportResponse{
		StartDate:    FormatDate(r.StartDate),
		EndDate:      FormatDate(r.EndDate),
		CategoryID:   r.CategoryID,
		OwnerID:      r.OwnerID,
		AdminView:    r.AdminView,
		GeneratedAt:  r.GeneratedAt,
		Transactions: entries,
		Summary:      summary,
	}
}
