package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/utils"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/accounting"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/clock"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/validation"
)

// fundService records cash injections.
type fundService struct {
	BaseService
	eventEmitter
	ledgerRepo portsrepo.LedgerRepositoryFacade
	validator  *validation.Validator
}

// FundServiceOption is a functional option for configuring the fund service
type FundServiceOption func(*fundService)

// WithFundClock sets the clock and ledger time zone used for date checks.
func WithFundClock(clk clock.Clock, loc *time.Location) FundServiceOption {
	return func(s *fundService) {
		s.BaseService = newBaseService(clk, loc)
	}
}

// WithFundEvents publishes a ledger event for every fund added.
func WithFundEvents(publisher portssvc.LedgerEventPublisher) FundServiceOption {
	return func(s *fundService) {
		s.publisher = publisher
	}
}

// NewFundService creates a new fund service.
func NewFundService(ledgerRepo portsrepo.LedgerRepositoryFacade, options ...FundServiceOption) portssvc.FundSvcFacade {
	svc := &fundService{
		BaseService: newBaseService(nil, nil),
		ledgerRepo:  ledgerRepo,
		validator:   validation.New(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.FundSvcFacade = (*fundService)(nil)

// AddFund implements portssvc.FundWriterSvc.
func (s *fundService) AddFund(ctx context.Context, principal domain.Principal, draft domain.FundDraft) (*domain.Fund, error) {
	if err := s.validator.Struct(draft); err != nil {
		s.LogDebug(ctx, "Fund draft rejected", slog.String("reason", err.Error()))
		return nil, err
	}
	if err := accounting.ValidateAmount("amount", draft.Amount); err != nil {
		s.LogDebug(ctx, "Fund draft rejected", slog.String("reason", err.Error()))
		return nil, err
	}
	date, err := s.checkEffectiveDate("effectiveDate", draft.EffectiveDate)
	if err != nil {
		s.LogDebug(ctx, "Fund draft rejected", slog.String("reason", err.Error()))
		return nil, err
	}

	now := s.Clock.Now()
	fund := domain.Fund{
		FundID:        uuid.NewString(),
		OwnerID:       principal.ID,
		Amount:        draft.Amount,
		Note:          draft.Note,
		EffectiveDate: date,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     principal.ID,
			LastUpdatedAt: now,
			LastUpdatedBy: principal.ID,
		},
	}

	err = s.ledgerRepo.WithOwnerLock(ctx, ownerOf(principal, principal.ID), func(ctx context.Context, store portsrepo.LedgerStore) error {
		return store.SaveFund(ctx, fund)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to add fund", slog.String("owner_id", principal.ID))
		return nil, fmt.Errorf("failed to add fund: %w", err)
	}

	s.LogInfo(ctx, "Fund added",
		slog.String("fund_id", fund.FundID),
		slog.String("owner_id", fund.OwnerID),
		slog.String("amount", utils.FormatWithPrecision(fund.Amount, utils.LedgerPrecision)))
	s.emit(ctx, newLedgerEvent(domain.EventFundAdded, fund.OwnerID, fund.FundID, fund.Amount, fund.EffectiveDate, principal.ID, now))
	return &fund, nil
}

// ListFunds implements portssvc.FundReaderSvc.
func (s *fundService) ListFunds(ctx context.Context, principal domain.Principal, ownerID string) ([]domain.Fund, error) {
	funds, err := s.ledgerRepo.FundsOf(ctx, domain.LedgerFilter{Scope: domain.ScopeFor(principal, ownerID)})
	if err != nil {
		s.LogError(ctx, err, "Failed to list funds", slog.String("principal_id", principal.ID))
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	return funds, nil
}

// HasInitialFund implements portssvc.FundReaderSvc.
func (s *fundService) HasInitialFund(ctx context.Context, ownerID string) (bool, error) {
	funds, err := s.ledgerRepo.FundsOf(ctx, domain.LedgerFilter{Scope: domain.SingleOwner(ownerID), Limit: 1})
	if err != nil {
		s.LogError(ctx, err, "Failed to check initial fund", slog.String("owner_id", ownerID))
		return false, fmt.Errorf("failed to check initial fund: %w", err)
	}
	return len(funds) > 0, nil
}
