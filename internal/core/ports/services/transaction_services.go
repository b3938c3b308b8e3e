package services

import (
	"context"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
)

// TransactionPosterSvc records, edits and deletes expenses while keeping every
// owner's balance non-negative.
type TransactionPosterSvc interface {
	// Post records an expense on the principal's own ledger. It fails with
	// *apperrors.InsufficientFundsError when the amount exceeds the current balance.
	Post(ctx context.Context, principal domain.Principal, draft domain.TransactionDraft) (*domain.Transaction, error)

	// Edit applies a patch. The balance check only runs when the amount changes.
	Edit(ctx context.Context, principal domain.Principal, transactionID string, patch domain.TransactionPatch) (*domain.Transaction, error)

	// Delete removes the transaction and schedules its receipt for release.
	Delete(ctx context.Context, principal domain.Principal, transactionID string) error

	// RemoveReceipt detaches the receipt from a transaction.
	RemoveReceipt(ctx context.Context, principal domain.Principal, transactionID string) (*domain.Transaction, error)
}

// TransactionReaderSvc defines read operations for transactions
type TransactionReaderSvc interface {
	GetTransaction(ctx context.Context, principal domain.Principal, transactionID string) (*domain.Transaction, error)

	// ListTransactions applies the report visibility rule to the filter.
	ListTransactions(ctx context.Context, principal domain.Principal, filter domain.TransactionListFilter) ([]domain.Transaction, error)

	// ReceiptURL resolves the public URL of the transaction's receipt, empty when it has none.
	ReceiptURL(ctx context.Context, txn domain.Transaction) string
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionPosterSvc
	TransactionReaderSvc
}
