package memory

import (
	"context"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/accounting"
)

// txStore buffers writes made inside WithOwnerLock. Reads see the store overlaid with
// the buffered writes; nothing reaches the store until applyLocked.
type txStore struct {
	base     *Store
	funds    []domain.Fund
	upserts  map[string]domain.Transaction
	deleted  map[string]bool
	cleanups []domain.ReceiptCleanup
}

func newTxStore(base *Store) *txStore {
	return &txStore{
		base:    base,
		upserts: make(map[string]domain.Transaction),
		deleted: make(map[string]bool),
	}
}

var _ portsrepo.LedgerStore = (*txStore)(nil)

func (t *txStore) FundsOf(_ context.Context, filter domain.LedgerFilter) ([]domain.Fund, error) {
	t.base.mu.RLock()
	unlimited := filter
	unlimited.Limit = 0
	out := t.base.fundsLocked(unlimited)
	t.base.mu.RUnlock()

	ff := fundFilter(filter)
	for _, f := range t.funds {
		if ff.Matches(f.OwnerID, f.EffectiveDate, "") {
			out = append(out, f)
		}
	}
	accounting.SortFundsNewestFirst(out)
	return limitSlice(out, filter.Limit), nil
}

func (t *txStore) TransactionsOf(_ context.Context, filter domain.LedgerFilter) ([]domain.Transaction, error) {
	t.base.mu.RLock()
	all := t.base.transactionsLocked(domain.LedgerFilter{Scope: filter.Scope})
	t.base.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(all))
	for _, txn := range all {
		if t.deleted[txn.TransactionID] {
			continue
		}
		if _, changed := t.upserts[txn.TransactionID]; changed {
			continue
		}
		if filter.Matches(txn.OwnerID, txn.EffectiveDate, txn.CategoryID) {
			out = append(out, txn)
		}
	}
	for id, txn := range t.upserts {
		if t.deleted[id] {
			continue
		}
		if filter.Matches(txn.OwnerID, txn.EffectiveDate, txn.CategoryID) {
			out = append(out, txn)
		}
	}
	accounting.SortTransactionsNewestFirst(out)
	return limitSlice(out, filter.Limit), nil
}

func (t *txStore) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	if t.deleted[transactionID] {
		return nil, apperrors.ErrNotFound
	}
	if txn, ok := t.upserts[transactionID]; ok {
		return &txn, nil
	}
	return t.base.FindTransactionByID(ctx, transactionID)
}

func (t *txStore) SaveFund(_ context.Context, fund domain.Fund) error {
	t.funds = append(t.funds, fund)
	return nil
}

func (t *txStore) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	if _, err := t.FindTransactionByID(ctx, txn.TransactionID); err == nil {
		return apperrors.ErrDuplicate
	}
	t.upserts[txn.TransactionID] = txn
	delete(t.deleted, txn.TransactionID)
	return nil
}

func (t *txStore) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	if _, err := t.FindTransactionByID(ctx, txn.TransactionID); err != nil {
		return err
	}
	t.upserts[txn.TransactionID] = txn
	return nil
}

func (t *txStore) DeleteTransaction(ctx context.Context, transactionID string) error {
	if _, err := t.FindTransactionByID(ctx, transactionID); err != nil {
		return err
	}
	t.deleted[transactionID] = true
	return nil
}

func (t *txStore) SavePendingCleanup(_ context.Context, cleanup domain.ReceiptCleanup) error {
	t.cleanups = append(t.cleanups, cleanup)
	return nil
}

// applyLocked publishes the buffered writes. The caller holds base.mu for writing.
func (t *txStore) applyLocked() {
	for _, f := range t.funds {
		t.base.funds[f.FundID] = f
	}
	for id, txn := range t.upserts {
		if !t.deleted[id] {
			t.base.transactions[id] = txn
		}
	}
	for id := range t.deleted {
		delete(t.base.transactions, id)
	}
	for _, c := range t.cleanups {
		t.base.cleanups[c.CleanupID] = c
	}
}
