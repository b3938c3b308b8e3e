package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	"github.com/SscSPs/petty_cash_ledger/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	f   *ledgerFixture
	ctx context.Context
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.f = newLedgerFixture(s.T())
	s.ctx = context.Background()
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func (s *TransactionServiceTestSuite) draft(v int64) domain.TransactionDraft {
	return domain.TransactionDraft{
		Amount:        amount(v),
		Description:   "Printer paper",
		CategoryID:    "office-supplies",
		EffectiveDate: day(10),
	}
}

func (s *TransactionServiceTestSuite) TestPost_Success() {
	s.f.fund(s.T(), ani, 1000000, 1)

	txn, err := s.f.svc.Transaction.Post(s.ctx, ani, s.draft(250000))

	s.Require().NoError(err)
	s.NotEmpty(txn.TransactionID)
	s.Equal(ani.ID, txn.OwnerID)
	s.Equal(ani.ID, txn.CreatedBy)
	s.Equal(day(10), txn.EffectiveDate)
	s.False(txn.HasReceipt())
	s.True(s.f.balance(s.T(), ani.ID).Equal(amount(750000)))
}

func (s *TransactionServiceTestSuite) TestPost_InsufficientFunds() {
	s.f.fund(s.T(), ani, 100000, 1)

	txn, err := s.f.svc.Transaction.Post(s.ctx, ani, s.draft(200000))

	s.Nil(txn)
	s.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	var insufficient *apperrors.InsufficientFundsError
	s.Require().ErrorAs(err, &insufficient)
	s.True(insufficient.Available.Equal(amount(100000)))

	s.True(s.f.balance(s.T(), ani.ID).Equal(amount(100000)))
	txns, err := s.f.store.TransactionsOf(s.ctx, domain.LedgerFilter{Scope: domain.SingleOwner(ani.ID)})
	s.Require().NoError(err)
	s.Empty(txns)
}

func (s *TransactionServiceTestSuite) TestPost_ExactBalanceAllowed() {
	s.f.fund(s.T(), ani, 100000, 1)

	_, err := s.f.svc.Transaction.Post(s.ctx, ani, s.draft(100000))

	s.Require().NoError(err)
	s.True(s.f.balance(s.T(), ani.ID).IsZero())
}

func (s *TransactionServiceTestSuite) TestPost_BalancesArePerOwner() {
	s.f.fund(s.T(), ani, 100000, 1)

	_, err := s.f.svc.Transaction.Post(s.ctx, budi, s.draft(1))

	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (s *TransactionServiceTestSuite) TestPost_Validation() {
	s.f.fund(s.T(), ani, 1000000, 1)
	s.f.store.AddCategory(domain.Category{CategoryID: "budi-only", Name: "Budi", OwnerID: ptr(budi.ID)})

	tests := []struct {
		name      string
		mutate    func(d *domain.TransactionDraft)
		wantField string
	}{
		{"zero amount", func(d *domain.TransactionDraft) { d.Amount = amount(0) }, "amount"},
		{"too many decimals", func(d *domain.TransactionDraft) { d.Amount = amount(1).Div(amount(3)) }, "amount"},
		{"over maximum", func(d *domain.TransactionDraft) { d.Amount = amount(10000000) }, "amount"},
		{"missing description", func(d *domain.TransactionDraft) { d.Description = "" }, "description"},
		{"future date", func(d *domain.TransactionDraft) { d.EffectiveDate = day(16) }, "effectiveDate"},
		{"unknown category", func(d *domain.TransactionDraft) { d.CategoryID = "nope" }, "categoryID"},
		{"someone else's category", func(d *domain.TransactionDraft) { d.CategoryID = "budi-only" }, "categoryID"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			d := s.draft(1000)
			tt.mutate(&d)
			_, err := s.f.svc.Transaction.Post(s.ctx, ani, d)
			var ve *apperrors.ValidationError
			s.Require().ErrorAs(err, &ve)
			s.Equal(tt.wantField, ve.Field)
		})
	}
	s.True(s.f.balance(s.T(), ani.ID).Equal(amount(1000000)))
}

func (s *TransactionServiceTestSuite) TestPost_TodayIsNotFuture() {
	s.f.fund(s.T(), ani, 1000, 1)
	d := s.draft(10)
	d.EffectiveDate = testNow

	txn, err := s.f.svc.Transaction.Post(s.ctx, ani, d)

	s.Require().NoError(err)
	s.Equal(day(15), txn.EffectiveDate)
}

func (s *TransactionServiceTestSuite) TestPost_WithReceipt() {
	s.f.fund(s.T(), ani, 1000, 1)
	d := s.draft(10)
	d.Receipt = &domain.ReceiptUpload{Filename: "r.jpg", ContentType: "image/jpeg", Data: []byte("jpg")}

	txn, err := s.f.svc.Transaction.Post(s.ctx, ani, d)

	s.Require().NoError(err)
	s.True(txn.HasReceipt())
	s.Equal("https://files.test/"+txn.ReceiptRef, s.f.svc.Transaction.ReceiptURL(s.ctx, *txn))
	s.Equal(1, s.f.receipts.count())
}

func (s *TransactionServiceTestSuite) TestPost_RejectedPostReleasesUploadedReceipt() {
	s.f.fund(s.T(), ani, 10, 1)
	d := s.draft(1000)
	d.Receipt = &domain.ReceiptUpload{Filename: "r.jpg", Data: []byte("jpg")}

	_, err := s.f.svc.Transaction.Post(s.ctx, ani, d)

	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.Equal(0, s.f.receipts.count())
	s.Empty(s.f.pendingCleanups(s.T()))
}

func (s *TransactionServiceTestSuite) TestPost_OrphanedReceiptIsRecordedWhenReleaseFails() {
	s.f.fund(s.T(), ani, 10, 1)
	s.f.receipts.setFailDelete(true)
	d := s.draft(1000)
	d.Receipt = &domain.ReceiptUpload{Filename: "r.jpg", Data: []byte("jpg")}

	_, err := s.f.svc.Transaction.Post(s.ctx, ani, d)

	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	pending := s.f.pendingCleanups(s.T())
	s.Require().Len(pending, 1)
	s.Equal(domain.CleanupReasonAbandoned, pending[0].Reason)
}

func (s *TransactionServiceTestSuite) TestPost_ReceiptStoreFailureLeavesLedgerUntouched() {
	s.f.fund(s.T(), ani, 1000, 1)
	s.f.receipts.failStore = true
	d := s.draft(10)
	d.Receipt = &domain.ReceiptUpload{Filename: "r.jpg", Data: []byte("jpg")}

	_, err := s.f.svc.Transaction.Post(s.ctx, ani, d)

	s.Require().ErrorIs(err, errReceiptBackend)
	s.False(apperrors.IsDomainError(err))
	s.True(s.f.balance(s.T(), ani.ID).Equal(amount(1000)))
}

func (s *TransactionServiceTestSuite) TestPost_ConcurrentPostsNeverOverdraw() {
	s.f.fund(s.T(), ani, 1000, 1)

	const posts = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, refused := 0, 0
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.f.svc.Transaction.Post(s.ctx, ani, s.draft(100))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperrors.ErrInsufficientFunds):
				refused++
			}
		}()
	}
	wg.Wait()

	s.Equal(10, succeeded)
	s.Equal(10, refused)
	s.True(s.f.balance(s.T(), ani.ID).IsZero())
}

// Each write fits the balance alone; together they would overdraw, so exactly one may land.
func (s *TransactionServiceTestSuite) TestEdit_ConcurrentWithPostNeverOverdraws() {
	for round := 0; round < 25; round++ {
		f := newLedgerFixture(s.T())
		f.fund(s.T(), ani, 1000, 1)
		txn := f.post(s.T(), ani, 400, 5, "other")

		start := make(chan struct{})
		var wg sync.WaitGroup
		var editErr, postErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, editErr = f.svc.Transaction.Edit(s.ctx, ani, txn.TransactionID, domain.TransactionPatch{Amount: ptr(amount(900))})
		}()
		go func() {
			defer wg.Done()
			<-start
			_, postErr = f.svc.Transaction.Post(s.ctx, ani, s.draft(500))
		}()
		close(start)
		wg.Wait()

		if editErr == nil {
			s.Require().ErrorIs(postErr, apperrors.ErrInsufficientFunds, "round %d", round)
			s.True(f.balance(s.T(), ani.ID).Equal(amount(100)), "round %d", round)
		} else {
			s.Require().ErrorIs(editErr, apperrors.ErrInsufficientFunds, "round %d", round)
			s.Require().NoError(postErr, "round %d", round)
			s.True(f.balance(s.T(), ani.ID).Equal(amount(100)), "round %d", round)
		}
	}
}

func (s *TransactionServiceTestSuite) TestEdit_AmountIncreaseWithinBalance() {
	s.f.fund(s.T(), ani, 1050000, 1)
	txn := s.f.post(s.T(), ani, 50000, 5, "other")
	s.True(s.f.balance(s.T(), ani.ID).Equal(amount(1000000)))

	updated, err := s.f.svc.Transaction.Edit(s.ctx, ani, txn.TransactionID, domain.TransactionPatch{Amount: ptr(amount(75000))})

	s.Require().NoError(err)
	s.True(updated.Amount.Equal(amount(75000)))
	s.True(s.f.balance(s.T(), ani.ID).Equal(amount(975000)))
}

func (s *TransactionServiceTestSuite) TestEdit_AmountIncreaseBeyondBalance() {
	s.f.fund(s.T(), ani, 100000, 1)
	txn := s.f.post(s.T(), ani, 50000, 5, "other")

	_, err := s.f.svc.Transaction.Edit(s.ctx, ani, txn.TransactionID, domain.TransactionPatch{Amount: ptr(amount(100001))})

	var insufficient *apperrors.InsufficientFundsError
	s.Require().ErrorAs(err, &insufficient)
	s.True(insufficient.Available.Equal(amount(100000)))
	stored, err := s.f.store.FindTransactionByID(s.ctx, txn.TransactionID)
	s.Require().NoError(err)
	s.True(stored.Amount.Equal(amount(50000)))
}

func (s *TransactionServiceTestSuite) TestEdit_DescriptionOnlyNeverChecksBalance() {
	s.f.fund(s.T(), ani, 100, 1)
	txn := s.f.post(s.T(), ani, 100, 5, "other")

	updated, err := s.f.svc.Transaction.Edit(s.ctx, ani, txn.TransactionID, domain.TransactionPatch{
		Description: ptr("Corrected description"),
		Amount:      ptr(amount(100)),
	})

	s.Require().NoError(err)
	s.Equal("Corrected description", updated.Description)
	s.True(s.f.balance(s.T(), ani.ID).IsZero())
}

func (s *TransactionServiceTestSuite) TestEdit_Authorization() {
	s.f.fund(s.T(), ani, 1000, 1)
	txn := s.f.post(s.T(), ani, 100, 5, "other")

	_, err := s.f.svc.Transaction.Edit(s.ctx, budi, txn.TransactionID, domain.TransactionPatch{Description: ptr("mine now")})
	s.ErrorIs(err, apperrors.ErrForbidden)

	updated, err := s.f.svc.Transaction.Edit(s.ctx, admin, txn.TransactionID, domain.TransactionPatch{Description: ptr("fixed by admin")})
	s.Require().NoError(err)
	s.Equal(admin.ID, updated.LastUpdatedBy)
	s.Equal(ani.ID, updated.OwnerID)

	_, err = s.f.svc.Transaction.Edit(s.ctx, ani, "missing", domain.TransactionPatch{Description: ptr("x")})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *TransactionServiceTestSuite) TestEdit_ReplaceReceipt() {
	s.f.fund(s.T(), ani, 1000, 1)
	d := s.draft(10)
	d.Receipt = &domain.ReceiptUpload{Filename: "old.jpg", Data: []byte("old")}
	txn, err := s.f.svc.Transaction.Post(s.ctx, ani, d)
	s.Require().NoError(err)
	oldRef := txn.ReceiptRef

	updated, err := s.f.svc.Transaction.Edit(s.ctx, ani, txn.TransactionID, domain.TransactionPatch{
		Receipt: &domain.ReceiptUpload{Filename: "new.jpg", Data: []byte("new")},
	})

	s.Require().NoError(err)
	s.NotEqual(oldRef, updated.ReceiptRef)
	exists, _ := s.f.receipts.Exists(s.ctx, updated.ReceiptRef)
	s.True(exists)
	exists, _ = s.f.receipts.Exists(s.ctx, oldRef)
	s.False(exists)
	s.Empty(s.f.pendingCleanups(s.T()))
}

func (s *TransactionServiceTestSuite) TestEdit_FailedReleaseIsRetriedBySweep() {
	s.f.fund(s.T(), ani, 1000, 1)
	d := s.draft(10)
	d.Receipt = &domain.ReceiptUpload{Filename: "old.jpg", Data: []byte("old")}
	txn, err := s.f.svc.Transaction.Post(s.ctx, ani, d)
	s.Require().NoError(err)
	oldRef := txn.ReceiptRef

	s.f.receipts.setFailDelete(true)
	_, err = s.f.svc.Transaction.Edit(s.ctx, ani, txn.TransactionID, domain.TransactionPatch{
		Receipt: &domain.ReceiptUpload{Filename: "new.jpg", Data: []byte("new")},
	})
	s.Require().NoError(err, "a failed release must not fail the edit")

	pending := s.f.pendingCleanups(s.T())
	s.Require().Len(pending, 1)
	s.Equal(oldRef, pending[0].ReceiptRef)
	s.Equal(domain.CleanupReasonReplaced, pending[0].Reason)
	s.Equal(1, pending[0].Attempts)

	s.f.receipts.setFailDelete(false)
	result, err := s.f.svc.ReceiptCleanup.SweepPendingCleanups(s.ctx, 10)
	s.Require().NoError(err)
	s.Equal(1, result.Released)
	s.Empty(s.f.pendingCleanups(s.T()))
	exists, _ := s.f.receipts.Exists(s.ctx, oldRef)
	s.False(exists)
}

func (s *TransactionServiceTestSuite) TestEdit_RejectedEditKeepsOldReceipt() {
	s.f.fund(s.T(), ani, 100, 1)
	d := s.draft(10)
	d.Receipt = &domain.ReceiptUpload{Filename: "old.jpg", Data: []byte("old")}
	txn, err := s.f.svc.Transaction.Post(s.ctx, ani, d)
	s.Require().NoError(err)

	_, err = s.f.svc.Transaction.Edit(s.ctx, ani, txn.TransactionID, domain.TransactionPatch{
		Amount:  ptr(amount(1000)),
		Receipt: &domain.ReceiptUpload{Filename: "new.jpg", Data: []byte("new")},
	})

	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.Equal(1, s.f.receipts.count())
	exists, _ := s.f.receipts.Exists(s.ctx, txn.ReceiptRef)
	s.True(exists)
}

func (s *TransactionServiceTestSuite) TestEdit_ReplaceAndRemoveConflict() {
	s.f.fund(s.T(), ani, 100, 1)
	txn := s.f.post(s.T(), ani, 10, 5, "other")

	_, err := s.f.svc.Transaction.Edit(s.ctx, ani, txn.TransactionID, domain.TransactionPatch{
		RemoveReceipt: true,
		Receipt:       &domain.ReceiptUpload{Filename: "x.jpg"},
	})

	var ve *apperrors.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Equal("receipt", ve.Field)
}

func (s *TransactionServiceTestSuite) TestRemoveReceipt() {
	s.f.fund(s.T(), ani, 1000, 1)
	d := s.draft(10)
	d.Receipt = &domain.ReceiptUpload{Filename: "r.jpg", Data: []byte("r")}
	txn, err := s.f.svc.Transaction.Post(s.ctx, ani, d)
	s.Require().NoError(err)

	updated, err := s.f.svc.Transaction.RemoveReceipt(s.ctx, ani, txn.TransactionID)

	s.Require().NoError(err)
	s.False(updated.HasReceipt())
	s.Empty(s.f.svc.Transaction.ReceiptURL(s.ctx, *updated))
	s.Equal([]string{txn.ReceiptRef}, s.f.receipts.deleted)
}

func (s *TransactionServiceTestSuite) TestDelete() {
	s.f.fund(s.T(), ani, 1000, 1)
	d := s.draft(400)
	d.Receipt = &domain.ReceiptUpload{Filename: "r.jpg", Data: []byte("r")}
	txn, err := s.f.svc.Transaction.Post(s.ctx, ani, d)
	s.Require().NoError(err)

	s.ErrorIs(s.f.svc.Transaction.Delete(s.ctx, budi, txn.TransactionID), apperrors.ErrForbidden)

	s.Require().NoError(s.f.svc.Transaction.Delete(s.ctx, ani, txn.TransactionID))
	s.True(s.f.balance(s.T(), ani.ID).Equal(amount(1000)))
	s.Equal(0, s.f.receipts.count())
	s.Empty(s.f.pendingCleanups(s.T()))

	s.ErrorIs(s.f.svc.Transaction.Delete(s.ctx, ani, txn.TransactionID), apperrors.ErrNotFound)
}

func (s *TransactionServiceTestSuite) TestDelete_ReceiptFailureDoesNotBlockDelete() {
	s.f.fund(s.T(), ani, 1000, 1)
	d := s.draft(400)
	d.Receipt = &domain.ReceiptUpload{Filename: "r.jpg", Data: []byte("r")}
	txn, err := s.f.svc.Transaction.Post(s.ctx, ani, d)
	s.Require().NoError(err)
	s.f.receipts.setFailDelete(true)

	s.Require().NoError(s.f.svc.Transaction.Delete(s.ctx, ani, txn.TransactionID))

	_, err = s.f.store.FindTransactionByID(s.ctx, txn.TransactionID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	pending := s.f.pendingCleanups(s.T())
	s.Require().Len(pending, 1)
	s.Equal(domain.CleanupReasonDeleted, pending[0].Reason)
}

func (s *TransactionServiceTestSuite) TestGetAndListTransactions() {
	s.f.fund(s.T(), ani, 1000, 1)
	s.f.fund(s.T(), budi, 1000, 1)
	a1 := s.f.post(s.T(), ani, 10, 2, "other")
	s.f.post(s.T(), ani, 20, 4, "transportation")
	s.f.post(s.T(), budi, 30, 3, "other")

	got, err := s.f.svc.Transaction.GetTransaction(s.ctx, ani, a1.TransactionID)
	s.Require().NoError(err)
	s.Equal(a1.TransactionID, got.TransactionID)
	_, err = s.f.svc.Transaction.GetTransaction(s.ctx, budi, a1.TransactionID)
	s.ErrorIs(err, apperrors.ErrForbidden)

	// The owner filter is ignored for non-administrators.
	list, err := s.f.svc.Transaction.ListTransactions(s.ctx, ani, domain.TransactionListFilter{OwnerID: budi.ID})
	s.Require().NoError(err)
	s.Len(list, 2)
	for _, txn := range list {
		s.Equal(ani.ID, txn.OwnerID)
	}
	s.True(list[0].EffectiveDate.After(list[1].EffectiveDate))

	list, err = s.f.svc.Transaction.ListTransactions(s.ctx, admin, domain.TransactionListFilter{})
	s.Require().NoError(err)
	s.Len(list, 3)

	list, err = s.f.svc.Transaction.ListTransactions(s.ctx, admin, domain.TransactionListFilter{OwnerID: budi.ID})
	s.Require().NoError(err)
	s.Len(list, 1)

	list, err = s.f.svc.Transaction.ListTransactions(s.ctx, admin, domain.TransactionListFilter{StartDate: ptr(day(3)), EndDate: ptr(day(4)), CategoryID: "other"})
	s.Require().NoError(err)
	s.Len(list, 1)

	_, err = s.f.svc.Transaction.ListTransactions(s.ctx, admin, domain.TransactionListFilter{StartDate: ptr(day(5)), EndDate: ptr(day(4))})
	s.ErrorIs(err, apperrors.ErrValidation)
}

// Infrastructure failures propagate unchanged and are never reported as domain errors.
func TestTransactionService_Post_StorageFailure(t *testing.T) {
	ledgerRepo := new(MockLedgerRepository)
	categoryRepo := new(MockCategoryRepository)
	cleanupRepo := new(MockCleanupRepository)
	svc := services.NewTransactionService(ledgerRepo, categoryRepo, cleanupRepo, newFakeReceiptStore())
	ctx := context.Background()
	storageDown := errors.New("connection refused")

	categoryRepo.On("FindCategoryByID", ctx, "other").Return(&domain.Category{CategoryID: "other", Name: "Other"}, nil).Once()
	ledgerRepo.On("WithOwnerLock", ctx, domain.Owner{OwnerID: ani.ID, DisplayName: ani.Name}).Return(nil).Once()
	ledgerRepo.On("FundsOf", ctx, mock.AnythingOfType("domain.LedgerFilter")).Return(nil, storageDown).Once()

	_, err := svc.Post(ctx, ani, domain.TransactionDraft{
		Amount:        amount(10),
		Description:   "Coffee",
		CategoryID:    "other",
		EffectiveDate: day(1),
	})

	require.ErrorIs(t, err, storageDown)
	assert.False(t, apperrors.IsDomainError(err))
	ledgerRepo.AssertNotCalled(t, "SaveTransaction", mock.Anything, mock.Anything)
	ledgerRepo.AssertExpectations(t)
	categoryRepo.AssertExpectations(t)
}
