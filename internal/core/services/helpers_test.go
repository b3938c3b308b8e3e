package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/core/services"
	"github.com/SscSPs/petty_cash_ledger/internal/platform/config"
	"github.com/SscSPs/petty_cash_ledger/internal/repositories/memory"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	ani   = domain.Principal{ID: "u-ani", Name: "Ani"}
	budi  = domain.Principal{ID: "u-budi", Name: "Budi"}
	admin = domain.Principal{ID: "u-admin", Name: "Admin", IsAdmin: true}
)

// testNow is 15 March 2024, mid-morning in UTC.
var testNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func ptr[T any](v T) *T { return &v }

// --- fake receipt store ---

var errReceiptBackend = errors.New("receipt backend unavailable")

type fakeReceiptStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	seq        int
	failStore  bool
	failDelete bool
	failExists bool
	deleted    []string
}

var _ portssvc.ReceiptStore = (*fakeReceiptStore)(nil)

func newFakeReceiptStore() *fakeReceiptStore {
	return &fakeReceiptStore{objects: make(map[string][]byte)}
}

func (f *fakeReceiptStore) Store(_ context.Context, upload domain.ReceiptUpload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failStore {
		return "", errReceiptBackend
	}
	f.seq++
	ref := fmt.Sprintf("receipts/%d-%s", f.seq, upload.Filename)
	f.objects[ref] = upload.Data
	return ref, nil
}

func (f *fakeReceiptStore) Delete(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errReceiptBackend
	}
	delete(f.objects, ref)
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeReceiptStore) Replace(ctx context.Context, oldRef string, upload domain.ReceiptUpload) (string, error) {
	ref, err := f.Store(ctx, upload)
	if err != nil {
		return "", err
	}
	return ref, f.Delete(ctx, oldRef)
}

func (f *fakeReceiptStore) URLOf(ref string) string { return "https://files.test/" + ref }

func (f *fakeReceiptStore) Exists(_ context.Context, ref string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failExists {
		return false, errReceiptBackend
	}
	_, ok := f.objects[ref]
	return ok, nil
}

func (f *fakeReceiptStore) setFailDelete(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failDelete = v
}

func (f *fakeReceiptStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// --- ledger fixture backed by the in-memory repository ---

type ledgerFixture struct {
	store    *memory.Store
	receipts *fakeReceiptStore
	clock    *clock.Fixed
	svc      *portssvc.ServiceContainer
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	return newLedgerFixtureIn(t, "USD")
}

// newLedgerFixtureIn builds the fixture with reports rendered in currency.
func newLedgerFixtureIn(t *testing.T, currency string) *ledgerFixture {
	t.Helper()
	store := memory.NewStore()
	receipts := newFakeReceiptStore()
	clk := clock.NewFixed(testNow)
	cfg := &config.Config{LedgerLocation: time.UTC, LedgerCurrency: currency}
	return &ledgerFixture{
		store:    store,
		receipts: receipts,
		clock:    clk,
		svc:      services.NewServiceContainer(cfg, store.Provider(), receipts, clk),
	}
}

func (f *ledgerFixture) fund(t *testing.T, p domain.Principal, v int64, d int) {
	t.Helper()
	_, err := f.svc.Fund.AddFund(context.Background(), p, domain.FundDraft{Amount: amount(v), EffectiveDate: day(d)})
	require.NoError(t, err)
}

func (f *ledgerFixture) post(t *testing.T, p domain.Principal, v int64, d int, category string) *domain.Transaction {
	t.Helper()
	txn, err := f.svc.Transaction.Post(context.Background(), p, domain.TransactionDraft{
		Amount:        amount(v),
		Description:   fmt.Sprintf("expense %d", v),
		CategoryID:    category,
		EffectiveDate: day(d),
	})
	require.NoError(t, err)
	return txn
}

func (f *ledgerFixture) balance(t *testing.T, ownerID string) decimal.Decimal {
	t.Helper()
	b, err := f.svc.Balance.CurrentBalance(context.Background(), ownerID)
	require.NoError(t, err)
	return b
}

func (f *ledgerFixture) pendingCleanups(t *testing.T) []domain.ReceiptCleanup {
	t.Helper()
	pending, err := f.store.ListPendingCleanups(context.Background(), 0)
	require.NoError(t, err)
	return pending
}

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

// Ensure MockLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) FundsOf(ctx context.Context, filter domain.LedgerFilter) ([]domain.Fund, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fund), args.Error(1)
}

func (m *MockLedgerRepository) TransactionsOf(ctx context.Context, filter domain.LedgerFilter) ([]domain.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) SaveFund(ctx context.Context, fund domain.Fund) error {
	return m.Called(ctx, fund).Error(0)
}

func (m *MockLedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *MockLedgerRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *MockLedgerRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	return m.Called(ctx, transactionID).Error(0)
}

func (m *MockLedgerRepository) SavePendingCleanup(ctx context.Context, cleanup domain.ReceiptCleanup) error {
	return m.Called(ctx, cleanup).Error(0)
}

// WithOwnerLock hands the mock itself to fn unless the expectation returns an error.
func (m *MockLedgerRepository) WithOwnerLock(ctx context.Context, owner domain.Owner, fn func(ctx context.Context, store portsrepo.LedgerStore) error) error {
	if err := m.Called(ctx, owner).Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

// --- Mock CategoryRepository ---
type MockCategoryRepository struct {
	mock.Mock
}

var _ portsrepo.CategoryRepositoryFacade = (*MockCategoryRepository)(nil)

func (m *MockCategoryRepository) ListCategoriesForOwner(ctx context.Context, ownerID string) ([]domain.Category, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]domain.Category, error) {
	args := m.Called(ctx, categoryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Category), args.Error(1)
}

// --- Mock ReceiptCleanupRepository ---
type MockCleanupRepository struct {
	mock.Mock
}

var _ portsrepo.ReceiptCleanupRepository = (*MockCleanupRepository)(nil)

func (m *MockCleanupRepository) ListPendingCleanups(ctx context.Context, limit int) ([]domain.ReceiptCleanup, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReceiptCleanup), args.Error(1)
}

func (m *MockCleanupRepository) MarkCleanupDone(ctx context.Context, cleanupID string) error {
	return m.Called(ctx, cleanupID).Error(0)
}

func (m *MockCleanupRepository) RecordCleanupAttempt(ctx context.Context, cleanupID string, lastError string, at time.Time) error {
	return m.Called(ctx, cleanupID, lastError, at).Error(0)
}
