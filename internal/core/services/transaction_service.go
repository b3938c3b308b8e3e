package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/utils"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/accounting"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/clock"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/validation"
)

// transactionService records expenses against an owner's float.
type transactionService struct {
	receiptReleaser
	eventEmitter
	ledgerRepo   portsrepo.LedgerRepositoryFacade
	categoryRepo portsrepo.CategoryReader
	validator    *validation.Validator
}

// TransactionServiceOption is a functional option for configuring the transaction service
type TransactionServiceOption func(*transactionService)

// WithTransactionClock sets the clock and ledger time zone used for date checks.
func WithTransactionClock(clk clock.Clock, loc *time.Location) TransactionServiceOption {
	return func(s *transactionService) {
		s.BaseService = newBaseService(clk, loc)
	}
}

// WithTransactionEvents publishes a ledger event for every committed post, edit and delete.
func WithTransactionEvents(publisher portssvc.LedgerEventPublisher) TransactionServiceOption {
	return func(s *transactionService) {
		s.publisher = publisher
	}
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	categoryRepo portsrepo.CategoryReader,
	cleanupRepo portsrepo.ReceiptCleanupRepository,
	receipts portssvc.ReceiptStore,
	options ...TransactionServiceOption,
) portssvc.TransactionSvcFacade {
	svc := &transactionService{
		receiptReleaser: receiptReleaser{
			BaseService: newBaseService(nil, nil),
			receipts:    receipts,
			cleanupRepo: cleanupRepo,
		},
		ledgerRepo:   ledgerRepo,
		categoryRepo: categoryRepo,
		validator:    validation.New(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure transactionService implements the portssvc.TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// checkCategory ensures the category exists and may be used on the owner's ledger.
func (s *transactionService) checkCategory(ctx context.Context, categoryID, ownerID string) error {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError("categoryID", "does not exist")
		}
		return fmt.Errorf("failed to look up category: %w", err)
	}
	if !category.VisibleTo(ownerID) {
		return apperrors.NewValidationError("categoryID", "is not available to this ledger")
	}
	return nil
}

func (s *transactionService) validateDraft(ctx context.Context, ownerID string, draft domain.TransactionDraft) (domain.TransactionDraft, error) {
	if err := s.validator.Struct(draft); err != nil {
		return draft, err
	}
	if err := accounting.ValidateAmount("amount", draft.Amount); err != nil {
		return draft, err
	}
	date, err := s.checkEffectiveDate("effectiveDate", draft.EffectiveDate)
	if err != nil {
		return draft, err
	}
	draft.EffectiveDate = date
	if err := s.checkCategory(ctx, draft.CategoryID, ownerID); err != nil {
		return draft, err
	}
	return draft, nil
}

func (s *transactionService) validatePatch(ctx context.Context, ownerID string, patch domain.TransactionPatch) (domain.TransactionPatch, error) {
	if err := s.validator.Struct(patch); err != nil {
		return patch, err
	}
	if patch.Receipt != nil && patch.RemoveReceipt {
		return patch, apperrors.NewValidationError("receipt", "cannot be replaced and removed at once")
	}
	if patch.Amount != nil {
		if err := accounting.ValidateAmount("amount", *patch.Amount); err != nil {
			return patch, err
		}
	}
	if patch.EffectiveDate != nil {
		date, err := s.checkEffectiveDate("effectiveDate", *patch.EffectiveDate)
		if err != nil {
			return patch, err
		}
		patch.EffectiveDate = &date
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(ctx, *patch.CategoryID, ownerID); err != nil {
			return patch, err
		}
	}
	return patch, nil
}

// storeUpload persists an attachment before any ledger mutation references it.
func (s *transactionService) storeUpload(ctx context.Context, upload *domain.ReceiptUpload) (string, error) {
	if upload == nil {
		return "", nil
	}
	ref, err := s.receipts.Store(ctx, *upload)
	if err != nil {
		s.LogError(ctx, err, "Failed to store receipt", slog.String("filename", upload.Filename))
		return "", fmt.Errorf("failed to store receipt: %w", err)
	}
	return ref, nil
}

// discardUpload releases an attachment whose ledger mutation did not commit. When the
// release fails the reference is recorded for the sweeper instead.
func (s *transactionService) discardUpload(ctx context.Context, owner domain.Owner, transactionID, ref string) {
	if ref == "" {
		return
	}
	err := s.receipts.Delete(ctx, ref)
	if err == nil {
		return
	}
	s.LogError(ctx, err, "Failed to discard orphaned receipt", slog.String("receipt_ref", ref))

	cleanup := s.newCleanup(owner.OwnerID, transactionID, ref, domain.CleanupReasonAbandoned)
	err = s.ledgerRepo.WithOwnerLock(ctx, owner, func(ctx context.Context, store portsrepo.LedgerStore) error {
		return store.SavePendingCleanup(ctx, cleanup)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record orphaned receipt for cleanup", slog.String("receipt_ref", ref))
	}
}

func (s *transactionService) newCleanup(ownerID, transactionID, ref, reason string) domain.ReceiptCleanup {
	return domain.ReceiptCleanup{
		CleanupID:     uuid.NewString(),
		ReceiptRef:    ref,
		OwnerID:       ownerID,
		TransactionID: transactionID,
		Reason:        reason,
		CreatedAt:     s.Clock.Now(),
	}
}

// ownerOf builds the owner record for a write. The display name is only known when
// the principal writes to their own ledger.
func ownerOf(principal domain.Principal, ownerID string) domain.Owner {
	owner := domain.Owner{OwnerID: ownerID}
	if principal.ID == ownerID {
		owner.DisplayName = principal.Name
	}
	return owner
}

// Post implements portssvc.TransactionPosterSvc.
func (s *transactionService) Post(ctx context.Context, principal domain.Principal, draft domain.TransactionDraft) (*domain.Transaction, error) {
	draft, err := s.validateDraft(ctx, principal.ID, draft)
	if err != nil {
		s.LogOutcome(ctx, err, "Transaction draft rejected", slog.String("owner_id", principal.ID))
		return nil, err
	}

	receiptRef, err := s.storeUpload(ctx, draft.Receipt)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		OwnerID:       principal.ID,
		Amount:        draft.Amount,
		Description:   draft.Description,
		CategoryID:    draft.CategoryID,
		EffectiveDate: draft.EffectiveDate,
		ReceiptRef:    receiptRef,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     principal.ID,
			LastUpdatedAt: now,
			LastUpdatedBy: principal.ID,
		},
	}

	owner := ownerOf(principal, principal.ID)
	err = s.ledgerRepo.WithOwnerLock(ctx, owner, func(ctx context.Context, store portsrepo.LedgerStore) error {
		balance, err := scopeBalance(ctx, store, domain.SingleOwner(principal.ID), nil)
		if err != nil {
			return err
		}
		if !accounting.CanAfford(balance, txn.Amount) {
			return apperrors.NewInsufficientFundsError(balance)
		}
		return store.SaveTransaction(ctx, txn)
	})
	if err != nil {
		s.discardUpload(ctx, owner, txn.TransactionID, receiptRef)
		s.LogOutcome(ctx, err, "Failed to post transaction",
			slog.String("owner_id", principal.ID),
			slog.String("amount", utils.FormatWithPrecision(txn.Amount, utils.LedgerPrecision)))
		return nil, err
	}

	s.LogInfo(ctx, "Transaction posted",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("owner_id", txn.OwnerID),
		slog.String("amount", utils.FormatWithPrecision(txn.Amount, utils.LedgerPrecision)))
	s.emit(ctx, newLedgerEvent(domain.EventTransactionPosted, txn.OwnerID, txn.TransactionID, txn.Amount, txn.EffectiveDate, principal.ID, now))
	return &txn, nil
}

// loadAuthorized reads the transaction and checks the principal may touch it.
func (s *transactionService) loadAuthorized(ctx context.Context, principal domain.Principal, transactionID string) (*domain.Transaction, error) {
	txn, err := s.ledgerRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		s.LogOutcome(ctx, err, "Failed to load transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	if err := s.AuthorizeOwner(ctx, principal, txn.OwnerID); err != nil {
		return nil, err
	}
	return txn, nil
}

// Edit implements portssvc.TransactionPosterSvc.
func (s *transactionService) Edit(ctx context.Context, principal domain.Principal, transactionID string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	current, err := s.loadAuthorized(ctx, principal, transactionID)
	if err != nil {
		return nil, err
	}

	patch, err = s.validatePatch(ctx, current.OwnerID, patch)
	if err != nil {
		s.LogOutcome(ctx, err, "Transaction patch rejected", slog.String("transaction_id", transactionID))
		return nil, err
	}

	newRef, err := s.storeUpload(ctx, patch.Receipt)
	if err != nil {
		return nil, err
	}

	owner := ownerOf(principal, current.OwnerID)
	var updated domain.Transaction
	var cleanup *domain.ReceiptCleanup
	err = s.ledgerRepo.WithOwnerLock(ctx, owner, func(ctx context.Context, store portsrepo.LedgerStore) error {
		cleanup = nil
		fresh, err := store.FindTransactionByID(ctx, transactionID)
		if err != nil {
			return err
		}
		updated = patch.Apply(*fresh)

		if patch.ChangesBalance(*fresh) {
			balance, err := scopeBalance(ctx, store, domain.SingleOwner(fresh.OwnerID), nil)
			if err != nil {
				return err
			}
			if accounting.BalanceAfterEdit(balance, fresh.Amount, updated.Amount).IsNegative() {
				return apperrors.NewInsufficientFundsError(balance.Add(fresh.Amount))
			}
		}

		switch {
		case newRef != "":
			updated.ReceiptRef = newRef
			if fresh.ReceiptRef != "" {
				c := s.newCleanup(fresh.OwnerID, fresh.TransactionID, fresh.ReceiptRef, domain.CleanupReasonReplaced)
				cleanup = &c
			}
		case patch.RemoveReceipt && fresh.ReceiptRef != "":
			updated.ReceiptRef = ""
			c := s.newCleanup(fresh.OwnerID, fresh.TransactionID, fresh.ReceiptRef, domain.CleanupReasonRemoved)
			cleanup = &c
		}
		if cleanup != nil {
			if err := store.SavePendingCleanup(ctx, *cleanup); err != nil {
				return err
			}
		}

		updated.LastUpdatedAt = s.Clock.Now()
		updated.LastUpdatedBy = principal.ID
		return store.UpdateTransaction(ctx, updated)
	})
	if err != nil {
		s.discardUpload(ctx, owner, transactionID, newRef)
		s.LogOutcome(ctx, err, "Failed to edit transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	if cleanup != nil {
		s.release(ctx, *cleanup)
	}

	s.LogInfo(ctx, "Transaction edited",
		slog.String("transaction_id", transactionID),
		slog.String("owner_id", updated.OwnerID),
		slog.String("edited_by", principal.ID))
	s.emit(ctx, newLedgerEvent(domain.EventTransactionEdited, updated.OwnerID, transactionID, updated.Amount, updated.EffectiveDate, principal.ID, updated.LastUpdatedAt))
	return &updated, nil
}

// RemoveReceipt implements portssvc.TransactionPosterSvc.
func (s *transactionService) RemoveReceipt(ctx context.Context, principal domain.Principal, transactionID string) (*domain.Transaction, error) {
	return s.Edit(ctx, principal, transactionID, domain.TransactionPatch{RemoveReceipt: true})
}

// Delete implements portssvc.TransactionPosterSvc.
func (s *transactionService) Delete(ctx context.Context, principal domain.Principal, transactionID string) error {
	current, err := s.loadAuthorized(ctx, principal, transactionID)
	if err != nil {
		return err
	}

	var cleanup *domain.ReceiptCleanup
	var deleted domain.Transaction
	err = s.ledgerRepo.WithOwnerLock(ctx, ownerOf(principal, current.OwnerID), func(ctx context.Context, store portsrepo.LedgerStore) error {
		cleanup = nil
		fresh, err := store.FindTransactionByID(ctx, transactionID)
		if err != nil {
			return err
		}
		deleted = *fresh
		if err := store.DeleteTransaction(ctx, transactionID); err != nil {
			return err
		}
		if fresh.ReceiptRef != "" {
			c := s.newCleanup(fresh.OwnerID, fresh.TransactionID, fresh.ReceiptRef, domain.CleanupReasonDeleted)
			cleanup = &c
			return store.SavePendingCleanup(ctx, c)
		}
		return nil
	})
	if err != nil {
		s.LogOutcome(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		return err
	}

	if cleanup != nil {
		s.release(ctx, *cleanup)
	}

	s.LogInfo(ctx, "Transaction deleted",
		slog.String("transaction_id", transactionID),
		slog.String("owner_id", current.OwnerID),
		slog.String("deleted_by", principal.ID))
	s.emit(ctx, newLedgerEvent(domain.EventTransactionDeleted, deleted.OwnerID, transactionID, deleted.Amount, deleted.EffectiveDate, principal.ID, s.Clock.Now()))
	return nil
}

// GetTransaction implements portssvc.TransactionReaderSvc.
func (s *transactionService) GetTransaction(ctx context.Context, principal domain.Principal, transactionID string) (*domain.Transaction, error) {
	return s.loadAuthorized(ctx, principal, transactionID)
}

// ListTransactions implements portssvc.TransactionReaderSvc.
func (s *transactionService) ListTransactions(ctx context.Context, principal domain.Principal, filter domain.TransactionListFilter) ([]domain.Transaction, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, apperrors.NewValidationError("startDate", "must not be after endDate")
	}
	if filter.Limit < 0 {
		return nil, apperrors.NewValidationError("limit", "must not be negative")
	}

	ledgerFilter := domain.LedgerFilter{
		Scope:      domain.ScopeFor(principal, filter.OwnerID),
		From:       filter.StartDate,
		To:         filter.EndDate,
		CategoryID: filter.CategoryID,
		Limit:      filter.Limit,
	}
	txns, err := s.ledgerRepo.TransactionsOf(ctx, ledgerFilter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("principal_id", principal.ID))
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

// ReceiptURL implements portssvc.TransactionReaderSvc.
func (s *transactionService) ReceiptURL(_ context.Context, txn domain.Transaction) string {
	if !txn.HasReceipt() {
		return ""
	}
	return s.receipts.URLOf(txn.ReceiptRef)
}
