package services

import (
	"context"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
)

// FundWriterSvc defines write operations for funds
type FundWriterSvc interface {
	// AddFund credits the principal's own ledger.
	AddFund(ctx context.Context, principal domain.Principal, draft domain.FundDraft) (*domain.Fund, error)
}

// FundReaderSvc defines read operations for funds
type FundReaderSvc interface {
	// ListFunds lists funds visible to the principal, newest first.
	ListFunds(ctx context.Context, principal domain.Principal, ownerID string) ([]domain.Fund, error)

	// HasInitialFund reports whether the owner has ever been funded.
	HasInitialFund(ctx context.Context, ownerID string) (bool, error)
}

// FundSvcFacade combines all fund-related service interfaces
type FundSvcFacade interface {
	FundWriterSvc
	FundReaderSvc
}
