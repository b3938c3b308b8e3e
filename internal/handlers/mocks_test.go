package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock BalanceService ---
type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) CurrentBalance(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockBalanceService) BalanceBefore(ctx context.Context, scope domain.OwnerScope, cutoff time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, scope, cutoff)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockBalanceService) GetBalance(ctx context.Context, p domain.Principal, ownerID string) (decimal.Decimal, error) {
	args := m.Called(ctx, p, ownerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockBalanceService) Overview(ctx context.Context, p domain.Principal) (*domain.LedgerOverview, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerOverview), args.Error(1)
}

var _ portssvc.BalanceSvcFacade = (*MockBalanceService)(nil)

// --- Mock FundService ---
type MockFundService struct {
	mock.Mock
}

func (m *MockFundService) AddFund(ctx context.Context, p domain.Principal, draft domain.FundDraft) (*domain.Fund, error) {
	args := m.Called(ctx, p, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Fund), args.Error(1)
}
func (m *MockFundService) ListFunds(ctx context.Context, p domain.Principal, ownerID string) ([]domain.Fund, error) {
	args := m.Called(ctx, p, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fund), args.Error(1)
}
func (m *MockFundService) HasInitialFund(ctx context.Context, ownerID string) (bool, error) {
	args := m.Called(ctx, ownerID)
	return args.Bool(0), args.Error(1)
}

var _ portssvc.FundSvcFacade = (*MockFundService)(nil)

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) Post(ctx context.Context, p domain.Principal, draft domain.TransactionDraft) (*domain.Transaction, error) {
	args := m.Called(ctx, p, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) Edit(ctx context.Context, p domain.Principal, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	args := m.Called(ctx, p, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) Delete(ctx context.Context, p domain.Principal, id string) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}
func (m *MockTransactionService) RemoveReceipt(ctx context.Context, p domain.Principal, id string) (*domain.Transaction, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) GetTransaction(ctx context.Context, p domain.Principal, id string) (*domain.Transaction, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) ListTransactions(ctx context.Context, p domain.Principal, filter domain.TransactionListFilter) ([]domain.Transaction, error) {
	args := m.Called(ctx, p, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *MockTransactionService) ReceiptURL(ctx context.Context, txn domain.Transaction) string {
	args := m.Called(ctx, txn)
	return args.String(0)
}

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

// --- Mock CategoryService ---
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) ListCategories(ctx context.Context, p domain.Principal) ([]domain.Category, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

var _ portssvc.CategorySvc = (*MockCategoryService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) Generate(ctx context.Context, p domain.Principal, filter domain.ReportFilter) (*domain.Report, error) {
	args := m.Called(ctx, p, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}
func (m *MockReportingService) Export(ctx context.Context, p domain.Principal, filter domain.ReportFilter, format domain.ExportFormat) ([]byte, string, error) {
	args := m.Called(ctx, p, filter, format)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)
