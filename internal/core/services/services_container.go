package services

import (
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/platform/config"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/clock"
)

// ContainerOption configures optional collaborators of the service container.
type ContainerOption func(*containerOptions)

type containerOptions struct {
	events portssvc.LedgerEventPublisher
}

// WithEventPublisher announces committed ledger mutations through publisher.
func WithEventPublisher(publisher portssvc.LedgerEventPublisher) ContainerOption {
	return func(o *containerOptions) {
		o.events = publisher
	}
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, receipts portssvc.ReceiptStore, clk clock.Clock, options ...ContainerOption) *portssvc.ServiceContainer {
	loc := cfg.LedgerLocation
	var opts containerOptions
	for _, option := range options {
		option(&opts)
	}

	return &portssvc.ServiceContainer{
		Balance: NewBalanceService(repos.LedgerRepo, repos.CategoryRepo,
			WithBalanceClock(clk, loc)),
		Fund: NewFundService(repos.LedgerRepo,
			WithFundClock(clk, loc),
			WithFundEvents(opts.events)),
		Transaction: NewTransactionService(repos.LedgerRepo, repos.CategoryRepo, repos.CleanupRepo, receipts,
			WithTransactionClock(clk, loc),
			WithTransactionEvents(opts.events)),
		Category: NewCategoryService(repos.CategoryRepo),
		Reporting: NewReportingService(repos.LedgerRepo, repos.CategoryRepo, repos.OwnerRepo,
			WithReportingClock(clk, loc),
			WithReportingCurrency(cfg.LedgerCurrency)),
		ReceiptCleanup: NewReceiptCleanupService(repos.CleanupRepo, receipts, clk),
	}
}
