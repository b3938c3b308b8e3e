package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/utils"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/accounting"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/clock"
	"github.com/shopspring/decimal"
)

const recentTransactionsLimit = 5

// balanceService implements the BalanceSvcFacade interface
type balanceService struct {
	BaseService
	ledgerRepo   portsrepo.LedgerReader
	categoryRepo portsrepo.CategoryReader
}

// BalanceServiceOption is a functional option for configuring the balance service
type BalanceServiceOption func(*balanceService)

// WithBalanceClock sets the clock and ledger time zone used for month boundaries.
func WithBalanceClock(clk clock.Clock, loc *time.Location) BalanceServiceOption {
	return func(s *balanceService) {
		s.BaseService = newBaseService(clk, loc)
	}
}

// NewBalanceService creates a new balance service with the provided options
func NewBalanceService(ledgerRepo portsrepo.LedgerReader, categoryRepo portsrepo.CategoryReader, options ...BalanceServiceOption) portssvc.BalanceSvcFacade {
	svc := &balanceService{
		BaseService:  newBaseService(nil, nil),
		ledgerRepo:   ledgerRepo,
		categoryRepo: categoryRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure balanceService implements the BalanceSvcFacade interface
var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// readLedger loads the funds and transactions matching filter. The reads run one
// after the other because reader may be bound to a single database transaction.
func readLedger(ctx context.Context, reader portsrepo.LedgerReader, filter domain.LedgerFilter) ([]domain.Fund, []domain.Transaction, error) {
	funds, err := reader.FundsOf(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read funds: %w", err)
	}
	txns, err := reader.TransactionsOf(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return funds, txns, nil
}

// scopeBalance is the balance over the scope, optionally restricted to entries before cutoff.
func scopeBalance(ctx context.Context, reader portsrepo.LedgerReader, scope domain.OwnerScope, cutoff *time.Time) (decimal.Decimal, error) {
	funds, txns, err := readLedger(ctx, reader, domain.LedgerFilter{Scope: scope, Before: cutoff})
	if err != nil {
		return decimal.Zero, err
	}
	if cutoff != nil {
		return accounting.BalanceBefore(funds, txns, *cutoff), nil
	}
	return accounting.Balance(funds, txns), nil
}

// CurrentBalance implements portssvc.BalanceCalculatorSvc.
func (s *balanceService) CurrentBalance(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	balance, err := scopeBalance(ctx, s.ledgerRepo, domain.SingleOwner(ownerID), nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to calculate current balance", slog.String("owner_id", ownerID))
		return decimal.Zero, err
	}
	return balance, nil
}

// BalanceBefore implements portssvc.BalanceCalculatorSvc.
func (s *balanceService) BalanceBefore(ctx context.Context, scope domain.OwnerScope, cutoff time.Time) (decimal.Decimal, error) {
	balance, err := scopeBalance(ctx, s.ledgerRepo, scope, &cutoff)
	if err != nil {
		s.LogError(ctx, err, "Failed to calculate balance before cutoff", slog.String("cutoff", cutoff.Format(domain.DateLayout)))
		return decimal.Zero, err
	}
	return balance, nil
}

// GetBalance implements portssvc.BalanceReaderSvc.
func (s *balanceService) GetBalance(ctx context.Context, principal domain.Principal, ownerID string) (decimal.Decimal, error) {
	scope := domain.ScopeFor(principal, ownerID)
	balance, err := scopeBalance(ctx, s.ledgerRepo, scope, nil)
	if err != nil {
		s.LogError(ctx, err, "Failed to calculate balance", slog.String("principal_id", principal.ID))
		return decimal.Zero, err
	}
	s.LogDebug(ctx, "Balance calculated",
		slog.String("principal_id", principal.ID),
		slog.Bool("all_owners", scope.IsAll()),
		slog.String("balance", utils.FormatWithPrecision(balance, utils.LedgerPrecision)))
	return balance, nil
}

// Overview implements portssvc.BalanceReaderSvc.
func (s *balanceService) Overview(ctx context.Context, principal domain.Principal) (*domain.LedgerOverview, error) {
	funds, txns, err := readLedger(ctx, s.ledgerRepo, domain.LedgerFilter{Scope: domain.SingleOwner(principal.ID)})
	if err != nil {
		s.LogError(ctx, err, "Failed to load ledger for overview", slog.String("owner_id", principal.ID))
		return nil, err
	}
	accounting.SortTransactionsNewestFirst(txns)

	first, last := domain.MonthBounds(s.Clock.Now(), s.Location)
	monthFilter := domain.LedgerFilter{Scope: domain.SingleOwner(principal.ID), From: &first, To: &last}
	var monthTxns []domain.Transaction
	categoryIDs := make([]string, 0)
	seen := make(map[string]bool)
	for _, t := range txns {
		if !monthFilter.Matches(t.OwnerID, t.EffectiveDate, t.CategoryID) {
			continue
		}
		monthTxns = append(monthTxns, t)
		if t.CategoryID != "" && !seen[t.CategoryID] {
			seen[t.CategoryID] = true
			categoryIDs = append(categoryIDs, t.CategoryID)
		}
	}

	categories := map[string]domain.Category{}
	if len(categoryIDs) > 0 {
		categories, err = s.categoryRepo.FindCategoriesByIDs(ctx, categoryIDs)
		if err != nil {
			s.LogError(ctx, err, "Failed to resolve categories for overview", slog.String("owner_id", principal.ID))
			return nil, fmt.Errorf("failed to resolve categories: %w", err)
		}
	}

	recent := txns
	if len(recent) > recentTransactionsLimit {
		recent = recent[:recentTransactionsLimit]
	}

	totalFunds := accounting.SumFunds(funds)
	totalExpenses := accounting.SumTransactions(txns)
	return &domain.LedgerOverview{
		OwnerID:              principal.ID,
		CurrentBalance:       totalFunds.Sub(totalExpenses),
		TotalFunds:           totalFunds,
		TotalExpenses:        totalExpenses,
		CurrentMonthSpending: accounting.SumTransactions(monthTxns),
		RecentTransactions:   recent,
		SpendingByCategory:   accounting.TotalsByCategory(monthTxns, categories),
		HasInitialFund:       len(funds) > 0,
	}, nil
}
