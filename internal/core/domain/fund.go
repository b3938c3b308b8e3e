package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fund is a credit entry: cash injected into the owner's float on EffectiveDate.
type Fund struct {
	FundID        string          `json:"fundID"`
	OwnerID       string          `json:"ownerID"`
	Amount        decimal.Decimal `json:"amount"` // Always positive, two decimals
	Note          string          `json:"note"`
	EffectiveDate time.Time       `json:"effectiveDate"` // Calendar date, see CalendarDate
	AuditFields
}

// FundDraft carries the user supplied part of a new fund.
type FundDraft struct {
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note" validate:"max=255"`
	EffectiveDate time.Time       `json:"effectiveDate" validate:"required"`
}
