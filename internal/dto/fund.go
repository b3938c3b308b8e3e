package dto

import (
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateFundRequest defines the data needed to top up the float.
type CreateFundRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note"`
	EffectiveDate string          `json:"effectiveDate"` // YYYY-MM-DD
}

// ToDraft converts the request into a domain.FundDraft.
func (r CreateFundRequest) ToDraft() (domain.FundDraft, error) {
	date, err := parseRequiredDate("effectiveDate", r.EffectiveDate)
	if err != nil {
		return domain.FundDraft{}, err
	}
	return domain.FundDraft{Amount: r.Amount, Note: r.Note, EffectiveDate: date}, nil
}

// ListFundsParams are the query parameters of GET /funds.
type ListFundsParams struct {
	OwnerID string `form:"ownerId"` // administrators only
}

// FundResponse defines the data returned for a fund.
type FundResponse struct {
	FundID        string          `json:"fundID"`
	OwnerID       string          `json:"ownerID"`
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note"`
	EffectiveDate string          `json:"effectiveDate"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
}

// ToFundResponse converts a domain.Fund to FundResponse DTO
func ToFundResponse(f domain.Fund) FundResponse {
	return FundResponse{
		FundID:        f.FundID,
		OwnerID:       f.OwnerID,
		Amount:        f.Amount,
		Note:          f.Note,
		EffectiveDate: FormatDate(f.EffectiveDate),
		CreatedAt:     f.CreatedAt,
		CreatedBy:     f.CreatedBy,
	}
}

// ToFundResponses converts a list of funds.
func ToFundResponses(funds []domain.Fund) []FundResponse {
	out := make([]FundResponse, len(funds))
	for i, f := range funds {
		out[i] = ToFundResponse(f)
	}
	return out
}
