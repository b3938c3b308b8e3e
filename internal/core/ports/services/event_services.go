package services

import (
	"context"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
)

// LedgerEventPublisher hands committed ledger mutations to a message broker.
type LedgerEventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
}
