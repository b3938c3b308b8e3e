package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/utils/clock"
	"golang.org/x/sync/errgroup"
)

// DefaultSweepLimit bounds one sweep pass when callers do not pass a limit.
const DefaultSweepLimit = 100

const sweepConcurrency = 4

// receiptReleaser releases receipt references and keeps their cleanup markers current.
type receiptReleaser struct {
	BaseService
	receipts    portssvc.ReceiptStore
	cleanupRepo portsrepo.ReceiptCleanupRepository
}

// release deletes the marker's reference. A failure is logged and recorded on the
// marker so a later sweep retries it; it is never returned to the ledger caller.
func (r *receiptReleaser) release(ctx context.Context, cleanup domain.ReceiptCleanup) bool {
	logAttrs := []any{
		slog.String("receipt_ref", cleanup.ReceiptRef),
		slog.String("cleanup_id", cleanup.CleanupID),
		slog.String("transaction_id", cleanup.TransactionID),
		slog.String("reason", cleanup.Reason),
	}

	if err := r.receipts.Delete(ctx, cleanup.ReceiptRef); err != nil {
		r.LogError(ctx, err, "Failed to release receipt, will retry", logAttrs...)
		if recErr := r.cleanupRepo.RecordCleanupAttempt(ctx, cleanup.CleanupID, err.Error(), r.Clock.Now()); recErr != nil {
			r.LogError(ctx, recErr, "Failed to record receipt cleanup attempt", logAttrs...)
		}
		return false
	}

	if err := r.cleanupRepo.MarkCleanupDone(ctx, cleanup.CleanupID); err != nil {
		// The reference is gone; a later sweep deletes it again, which is a no-op.
		r.LogError(ctx, err, "Failed to clear receipt cleanup marker", logAttrs...)
	}
	r.LogInfo(ctx, "Receipt released", logAttrs...)
	return true
}

// receiptCleanupService implements the ReceiptCleanupSvc interface
type receiptCleanupService struct {
	receiptReleaser
}

// NewReceiptCleanupService creates the service that sweeps pending receipt cleanups.
func NewReceiptCleanupService(cleanupRepo portsrepo.ReceiptCleanupRepository, receipts portssvc.ReceiptStore, clk clock.Clock) portssvc.ReceiptCleanupSvc {
	return &receiptCleanupService{
		receiptReleaser: receiptReleaser{
			BaseService: newBaseService(clk, nil),
			receipts:    receipts,
			cleanupRepo: cleanupRepo,
		},
	}
}

var _ portssvc.ReceiptCleanupSvc = (*receiptCleanupService)(nil)

// SweepPendingCleanups retries up to limit outstanding receipt releases.
func (s *receiptCleanupService) SweepPendingCleanups(ctx context.Context, limit int) (portssvc.SweepResult, error) {
	if limit <= 0 {
		limit = DefaultSweepLimit
	}
	pending, err := s.cleanupRepo.ListPendingCleanups(ctx, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pending receipt cleanups")
		return portssvc.SweepResult{}, fmt.Errorf("failed to list pending receipt cleanups: %w", err)
	}
	if len(pending) == 0 {
		return portssvc.SweepResult{}, nil
	}

	var released atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for _, cleanup := range pending {
		g.Go(func() error {
			if s.alreadyReleased(gctx, cleanup) || s.release(gctx, cleanup) {
				released.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := portssvc.SweepResult{
		Attempted: len(pending),
		Released:  int(released.Load()),
	}
	result.Failed = result.Attempted - result.Released
	s.LogInfo(ctx, "Receipt cleanup sweep finished",
		slog.Int("attempted", result.Attempted),
		slog.Int("released", result.Released),
		slog.Int("failed", result.Failed))
	return result, nil
}

// alreadyReleased clears the marker when its reference no longer exists. A failed
// lookup falls through to a regular release.
func (s *receiptCleanupService) alreadyReleased(ctx context.Context, cleanup domain.ReceiptCleanup) bool {
	exists, err := s.receipts.Exists(ctx, cleanup.ReceiptRef)
	if err != nil {
		s.LogWarn(ctx, "Failed to look up receipt before release",
			slog.String("receipt_ref", cleanup.ReceiptRef),
			slog.String("error", err.Error()))
		return false
	}
	if exists {
		return false
	}
	if err := s.cleanupRepo.MarkCleanupDone(ctx, cleanup.CleanupID); err != nil {
		s.LogError(ctx, err, "Failed to clear receipt cleanup marker",
			slog.String("receipt_ref", cleanup.ReceiptRef),
			slog.String("cleanup_id", cleanup.CleanupID))
	}
	s.LogDebug(ctx, "Receipt already released", slog.String("receipt_ref", cleanup.ReceiptRef))
	return true
}

// RunSweeper sweeps on every tick until ctx is cancelled.
func RunSweeper(ctx context.Context, svc portssvc.ReceiptCleanupSvc, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.SweepPendingCleanups(ctx, DefaultSweepLimit); err != nil {
				logger.Error("Receipt cleanup sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
