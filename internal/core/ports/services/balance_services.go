package services

import (
	"context"
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceCalculatorSvc derives balances from ledger records. It never fails for
// domain reasons; only infrastructure errors are returned.
type BalanceCalculatorSvc interface {
	// CurrentBalance is the sum of the owner's funds minus the sum of their transactions.
	CurrentBalance(ctx context.Context, ownerID string) (decimal.Decimal, error)

	// BalanceBefore is CurrentBalance over the scope restricted to entries dated strictly
	// before cutoff.
	BalanceBefore(ctx context.Context, scope domain.OwnerScope, cutoff time.Time) (decimal.Decimal, error)
}

// BalanceReaderSvc exposes balances to principals.
type BalanceReaderSvc interface {
	// GetBalance returns the balance visible to the principal. Administrators may name an
	// owner; without one they get the balance across every ledger.
	GetBalance(ctx context.Context, principal domain.Principal, ownerID string) (decimal.Decimal, error)

	// Overview assembles the dashboard figures for the principal's own ledger.
	Overview(ctx context.Context, principal domain.Principal) (*domain.LedgerOverview, error)
}

// BalanceSvcFacade combines all balance-related service interfaces
type BalanceSvcFacade interface {
	BalanceCalculatorSvc
	BalanceReaderSvc
}
