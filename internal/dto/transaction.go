package dto

import (
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest defines the data needed to record an expense.
// Multipart requests carry the same fields as form values plus a "receipt" file.
type CreateTransactionRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	CategoryID    string          `json:"categoryID"`
	EffectiveDate string          `json:"effectiveDate"` // YYYY-MM-DD
}

// ToDraft converts the request into a domain.TransactionDraft.
func (r CreateTransactionRequest) ToDraft(receipt *domain.ReceiptUpload) (domain.TransactionDraft, error) {
	date, err := parseRequiredDate("effectiveDate", r.EffectiveDate)
	if err != nil {
		return domain.TransactionDraft{}, err
	}
	return domain.TransactionDraft{
		Amount:        r.Amount,
		Description:   r.Description,
		CategoryID:    r.CategoryID,
		EffectiveDate: date,
		Receipt:       receipt,
	}, nil
}

// UpdateTransactionRequest defines the data allowed for updating a transaction.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateTransactionRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	Description   *string          `json:"description"`
	CategoryID    *string          `json:"categoryID"`
	EffectiveDate *string          `json:"effectiveDate"`
	RemoveReceipt bool             `json:"removeReceipt"`
}

// ToPatch converts the request into a domain.TransactionPatch.
func (r UpdateTransactionRequest) ToPatch(receipt *domain.ReceiptUpload) (domain.TransactionPatch, error) {
	patch := domain.TransactionPatch{
		Amount:        r.Amount,
		Description:   r.Description,
		CategoryID:    r.CategoryID,
		Receipt:       receipt,
		RemoveReceipt: r.RemoveReceipt,
	}
	if r.EffectiveDate != nil {
		date, err := parseRequiredDate("effectiveDate", *r.EffectiveDate)
		if err != nil {
			return domain.TransactionPatch{}, err
		}
		patch.EffectiveDate = &date
	}
	return patch, nil
}

// ParseAmount parses a decimal amount sent as a form value.
func ParseAmount(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, apperrors.NewValidationError(field, "is required")
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperrors.NewValidationError(field, "must be a number")
	}
	return d, nil
}

// ListTransactionsParams are the query parameters of GET /transactions.
type ListTransactionsParams struct {
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	CategoryID string `form:"categoryId"`
	OwnerID    string `form:"ownerId"` // administrators only
	Limit      int    `form:"limit"`
}

// ToFilter converts the parameters into a domain.TransactionListFilter.
func (p ListTransactionsParams) ToFilter() (domain.TransactionListFilter, error) {
	start, err := parseOptionalDate("startDate", p.StartDate)
	if err != nil {
		return domain.TransactionListFilter{}, err
	}
	end, err := parseOptionalDate("endDate", p.EndDate)
	if err != nil {
		return domain.TransactionListFilter{}, err
	}
	return domain.TransactionListFilter{
		StartDate:  start,
		EndDate:    end,
		CategoryID: p.CategoryID,
		OwnerID:    p.OwnerID,
		Limit:      p.Limit,
	}, nil
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	OwnerID       string          `json:"ownerID"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	CategoryID    string          `json:"categoryID,omitempty"`
	EffectiveDate string          `json:"effectiveDate"`
	HasReceipt    bool            `json:"hasReceipt"`
	ReceiptURL    string          `json:"receiptUrl,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy string          `json:"lastUpdatedBy"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(t domain.Transaction, receiptURL string) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		OwnerID:       t.OwnerID,
		Amount:        t.Amount,
		Description:   t.Description,
		CategoryID:    t.CategoryID,
		EffectiveDate: FormatDate(t.EffectiveDate),
		HasReceipt:    t.HasReceipt(),
		ReceiptURL:    receiptURL,
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
		LastUpdatedAt: t.LastUpdatedAt,
		LastUpdatedBy: t.LastUpdatedBy,
	}
}

// ListTransactionsResponse wraps a transaction listing.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}
