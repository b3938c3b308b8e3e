package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/middleware"
)

// eventEmitter publishes ledger events after commit. A nil publisher disables it.
type eventEmitter struct {
	publisher portssvc.LedgerEventPublisher
}

func newLedgerEvent(kind, ownerID, entryID string, amount decimal.Decimal, effective time.Time, actorID string, at time.Time) domain.LedgerEvent {
	return domain.LedgerEvent{
		EventID:       uuid.NewString(),
		Kind:          kind,
		OwnerID:       ownerID,
		EntryID:       entryID,
		Amount:        amount,
		EffectiveDate: effective.Format(domain.DateLayout),
		ActorID:       actorID,
		OccurredAt:    at,
	}
}

// emit never fails the caller: the mutation is already committed.
func (e eventEmitter) emit(ctx context.Context, event domain.LedgerEvent) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to publish ledger event",
			slog.String("error", err.Error()),
			slog.String("kind", event.Kind),
			slog.String("entry_id", event.EntryID))
	}
}
