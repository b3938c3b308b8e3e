package repositories

import (
	"context"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
)

// LedgerReader defines read operations over funds and transactions
type LedgerReader interface {
	// FundsOf returns the funds matching the filter, newest first.
	// The category criterion of the filter does not apply to funds.
	FundsOf(ctx context.Context, filter domain.LedgerFilter) ([]domain.Fund, error)

	// TransactionsOf returns the transactions matching the filter ordered by
	// effective date then creation time, both descending.
	TransactionsOf(ctx context.Context, filter domain.LedgerFilter) ([]domain.Transaction, error)

	// FindTransactionByID returns apperrors.ErrNotFound when no such transaction exists.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
}

// LedgerWriter defines write operations over funds and transactions
type LedgerWriter interface {
	SaveFund(ctx context.Context, fund domain.Fund) error
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransaction overwrites the mutable fields of an existing transaction.
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error

	// DeleteTransaction removes the transaction; apperrors.ErrNotFound if it is gone already.
	DeleteTransaction(ctx context.Context, transactionID string) error

	// SavePendingCleanup records a receipt reference that must be released once the
	// surrounding mutation is committed.
	SavePendingCleanup(ctx context.Context, cleanup domain.ReceiptCleanup) error
}

// LedgerStore is the view of the ledger handed to a unit of work.
type LedgerStore interface {
	LedgerReader
	LedgerWriter
}

// LedgerUnitOfWork serializes writes per owner.
type LedgerUnitOfWork interface {
	// WithOwnerLock runs fn while holding the owner's ledger lock. Everything fn writes
	// through store becomes visible atomically when fn returns nil and is discarded
	// otherwise. The owner is recorded in the owner directory on first use.
	WithOwnerLock(ctx context.Context, owner domain.Owner, fn func(ctx context.Context, store LedgerStore) error) error
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces
type LedgerRepositoryFacade interface {
	LedgerStore
	LedgerUnitOfWork
}
