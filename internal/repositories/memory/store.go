// Package memory is an in-process ledger repository used for development and tests.
// Writes for one owner are serialized by a per-owner mutex and applied atomically.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/accounting"
)

// Store keeps every record in maps guarded by mu.
type Store struct {
	mu           sync.RWMutex
	funds        map[string]domain.Fund
	transactions map[string]domain.Transaction
	owners       map[string]string
	categories   map[string]domain.Category
	cleanups     map[string]domain.ReceiptCleanup

	locksMu    sync.Mutex
	ownerLocks map[string]*sync.Mutex
}

// NewStore returns an empty store seeded with the default categories.
func NewStore() *Store {
	s := &Store{
		funds:        make(map[string]domain.Fund),
		transactions: make(map[string]domain.Transaction),
		owners:       make(map[string]string),
		categories:   make(map[string]domain.Category),
		cleanups:     make(map[string]domain.ReceiptCleanup),
		ownerLocks:   make(map[string]*sync.Mutex),
	}
	for _, c := range domain.DefaultCategories() {
		s.categories[c.CategoryID] = c
	}
	return s
}

// Provider exposes the store through every repository port.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:   s,
		CategoryRepo: s,
		OwnerRepo:    s,
		CleanupRepo:  s,
	}
}

var (
	_ portsrepo.LedgerRepositoryFacade   = (*Store)(nil)
	_ portsrepo.CategoryRepositoryFacade = (*Store)(nil)
	_ portsrepo.OwnerDirectory           = (*Store)(nil)
	_ portsrepo.ReceiptCleanupRepository = (*Store)(nil)
)

// AddCategory registers a category, typically an owner's custom one.
func (s *Store) AddCategory(c domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.CategoryID] = c
}

func fundFilter(f domain.LedgerFilter) domain.LedgerFilter {
	f.CategoryID = ""
	return f
}

func limitSlice[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// FundsOf implements portsrepo.LedgerReader.
func (s *Store) FundsOf(_ context.Context, filter domain.LedgerFilter) ([]domain.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fundsLocked(filter), nil
}

func (s *Store) fundsLocked(filter domain.LedgerFilter) []domain.Fund {
	ff := fundFilter(filter)
	out := make([]domain.Fund, 0)
	for _, f := range s.funds {
		if ff.Matches(f.OwnerID, f.EffectiveDate, "") {
			out = append(out, f)
		}
	}
	accounting.SortFundsNewestFirst(out)
	return limitSlice(out, filter.Limit)
}

// TransactionsOf implements portsrepo.LedgerReader.
func (s *Store) TransactionsOf(_ context.Context, filter domain.LedgerFilter) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactionsLocked(filter), nil
}

func (s *Store) transactionsLocked(filter domain.LedgerFilter) []domain.Transaction {
	out := make([]domain.Transaction, 0)
	for _, t := range s.transactions {
		if filter.Matches(t.OwnerID, t.EffectiveDate, t.CategoryID) {
			out = append(out, t)
		}
	}
	accounting.SortTransactionsNewestFirst(out)
	return limitSlice(out, filter.Limit)
}

// FindTransactionByID implements portsrepo.LedgerReader.
func (s *Store) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &t, nil
}

// SaveFund implements portsrepo.LedgerWriter.
func (s *Store) SaveFund(_ context.Context, fund domain.Fund) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.funds[fund.FundID]; exists {
		return apperrors.ErrDuplicate
	}
	s.funds[fund.FundID] = fund
	return nil
}

// SaveTransaction implements portsrepo.LedgerWriter.
func (s *Store) SaveTransaction(_ context.Context, txn domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.transactions[txn.TransactionID]; exists {
		return apperrors.ErrDuplicate
	}
	s.transactions[txn.TransactionID] = txn
	return nil
}

// UpdateTransaction implements portsrepo.LedgerWriter.
func (s *Store) UpdateTransaction(_ context.Context, txn domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.transactions[txn.TransactionID]; !exists {
		return apperrors.ErrNotFound
	}
	s.transactions[txn.TransactionID] = txn
	return nil
}

// DeleteTransaction implements portsrepo.LedgerWriter.
func (s *Store) DeleteTransaction(_ context.Context, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.transactions[transactionID]; !exists {
		return apperrors.ErrNotFound
	}
	delete(s.transactions, transactionID)
	return nil
}

// SavePendingCleanup implements portsrepo.LedgerWriter.
func (s *Store) SavePendingCleanup(_ context.Context, cleanup domain.ReceiptCleanup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanups[cleanup.CleanupID] = cleanup
	return nil
}

func (s *Store) ownerLock(ownerID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.ownerLocks[ownerID]
	if !ok {
		l = &sync.Mutex{}
		s.ownerLocks[ownerID] = l
	}
	return l
}

// WithOwnerLock implements portsrepo.LedgerUnitOfWork.
func (s *Store) WithOwnerLock(ctx context.Context, owner domain.Owner, fn func(ctx context.Context, store portsrepo.LedgerStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := s.ownerLock(owner.OwnerID)
	l.Lock()
	defer l.Unlock()

	tx := newTxStore(s)
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tx.applyLocked()
	if _, known := s.owners[owner.OwnerID]; !known || owner.DisplayName != "" {
		s.owners[owner.OwnerID] = owner.DisplayName
	}
	return nil
}

// ListCategoriesForOwner implements portsrepo.CategoryReader.
func (s *Store) ListCategoriesForOwner(_ context.Context, ownerID string) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.VisibleTo(ownerID) {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.Category) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.CategoryID, b.CategoryID)
	})
	return out, nil
}

// FindCategoryByID implements portsrepo.CategoryReader.
func (s *Store) FindCategoryByID(_ context.Context, categoryID string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[categoryID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

// FindCategoriesByIDs implements portsrepo.CategoryReader.
func (s *Store) FindCategoriesByIDs(_ context.Context, categoryIDs []string) (map[string]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.Category, len(categoryIDs))
	for _, id := range categoryIDs {
		if c, ok := s.categories[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

// FindOwnerNames implements portsrepo.OwnerDirectory.
func (s *Store) FindOwnerNames(_ context.Context, ownerIDs []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(ownerIDs))
	for _, id := range ownerIDs {
		if name, ok := s.owners[id]; ok && name != "" {
			out[id] = name
		}
	}
	return out, nil
}

// ListPendingCleanups implements portsrepo.ReceiptCleanupRepository.
func (s *Store) ListPendingCleanups(_ context.Context, limit int) ([]domain.ReceiptCleanup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ReceiptCleanup, 0, len(s.cleanups))
	for _, c := range s.cleanups {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.ReceiptCleanup) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.CleanupID, b.CleanupID)
	})
	return limitSlice(out, limit), nil
}

// MarkCleanupDone implements portsrepo.ReceiptCleanupRepository.
func (s *Store) MarkCleanupDone(_ context.Context, cleanupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cleanups, cleanupID)
	return nil
}

// RecordCleanupAttempt implements portsrepo.ReceiptCleanupRepository.
func (s *Store) RecordCleanupAttempt(_ context.Context, cleanupID string, lastError string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cleanups[cleanupID]
	if !ok {
		return apperrors.ErrNotFound
	}
	c.Attempts++
	c.LastError = lastError
	c.LastAttemptAt = &at
	s.cleanups[cleanupID] = c
	return nil
}
