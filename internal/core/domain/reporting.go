package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerFilter narrows ledger reads. All date bounds compare calendar dates.
type LedgerFilter struct {
	Scope      OwnerScope
	From       *time.Time // inclusive
	To         *time.Time // inclusive
	Before     *time.Time // exclusive
	CategoryID string
	Limit      int // 0 means no limit
}

// Matches reports whether an entry with the given owner, date and category passes the filter.
func (f LedgerFilter) Matches(ownerID string, effectiveDate time.Time, categoryID string) bool {
	if !f.Scope.Includes(ownerID) {
		return false
	}
	if f.From != nil && effectiveDate.Before(*f.From) {
		return false
	}
	if f.To != nil && effectiveDate.After(*f.To) {
		return false
	}
	if f.Before != nil && !effectiveDate.Before(*f.Before) {
		return false
	}
	if f.CategoryID != "" && categoryID != f.CategoryID {
		return false
	}
	return true
}

// TransactionListFilter is the caller facing filter for transaction listings.
type TransactionListFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID string
	OwnerID    string // honoured for administrators only
	Limit      int
}

// ReportFilter is the caller facing filter for reports. Zero dates default to the current month.
type ReportFilter struct {
	StartDate  time.Time
	EndDate    time.Time
	CategoryID string
	OwnerID    string // honoured for administrators only
}

// ReportEntry is a transaction enriched with the names needed to render it.
type ReportEntry struct {
	Transaction
	CategoryName string `json:"categoryName"`
	OwnerName    string `json:"ownerName"`
}

// CategoryTotal aggregates in-range spending for one category.
type CategoryTotal struct {
	CategoryID   string          `json:"categoryID"`
	CategoryName string          `json:"categoryName"`
	Color        string          `json:"color"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
}

// OwnerTotal aggregates in-range spending for one owner.
type OwnerTotal struct {
	OwnerID   string          `json:"ownerID"`
	OwnerName string          `json:"ownerName"`
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count"`
}

// ReportSummary holds the period figures.
// EndingBalance is BeginningBalance minus TotalAmount; in-period funds reach it only
// through BeginningBalance.
type ReportSummary struct {
	TotalCount       int             `json:"totalCount"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	BeginningBalance decimal.Decimal `json:"beginningBalance"`
	EndingBalance    decimal.Decimal `json:"endingBalance"`
	ByCategory       []CategoryTotal `json:"byCategory"`
	ByOwner          []OwnerTotal    `json:"byOwner"`
}

// Report is the result of a report query.
type Report struct {
	StartDate    time.Time     `json:"startDate"`
	EndDate      time.Time     `json:"endDate"`
	CategoryID   string        `json:"categoryID,omitempty"`
	OwnerID      string        `json:"ownerID,omitempty"`
	AdminView    bool          `json:"adminView"`
	GeneratedAt  time.Time     `json:"generatedAt"`
	Transactions []ReportEntry `json:"transactions"`
	Summary      ReportSummary `json:"summary"`
}

// LedgerOverview is the dashboard view of one owner's ledger.
type LedgerOverview struct {
	OwnerID              string          `json:"ownerID"`
	CurrentBalance       decimal.Decimal `json:"currentBalance"`
	TotalFunds           decimal.Decimal `json:"totalFunds"`
	TotalExpenses        decimal.Decimal `json:"totalExpenses"`
	CurrentMonthSpending decimal.Decimal `json:"currentMonthSpending"`
	RecentTransactions   []Transaction   `json:"recentTransactions"`
	SpendingByCategory   []CategoryTotal `json:"spendingByCategory"`
	HasInitialFund       bool            `json:"hasInitialFund"`
}

// ExportFormat selects the document a report is rendered into.
type ExportFormat string

const (
	ExportCSV      ExportFormat = "csv"
	ExportXLSX     ExportFormat = "xlsx"
	ExportMarkdown ExportFormat = "md"
)

// ContentType is the media type served for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportMarkdown:
		return "text/markdown; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}
