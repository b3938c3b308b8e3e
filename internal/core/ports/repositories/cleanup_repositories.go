package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
)

// ReceiptCleanupRepository tracks receipt references awaiting release.
type ReceiptCleanupRepository interface {
	// ListPendingCleanups returns the oldest outstanding markers first.
	ListPendingCleanups(ctx context.Context, limit int) ([]domain.ReceiptCleanup, error)

	// MarkCleanupDone removes the marker once its reference has been released.
	MarkCleanupDone(ctx context.Context, cleanupID string) error

	// RecordCleanupAttempt bumps the attempt counter and stores the failure.
	RecordCleanupAttempt(ctx context.Context, cleanupID string, lastError string, at time.Time) error
}
