package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCleanupRepository struct {
	pool *pgxpool.Pool
}

func newPgxCleanupRepository(pool *pgxpool.Pool) portsrepo.ReceiptCleanupRepository {
	return &PgxCleanupRepository{pool: pool}
}

var _ portsrepo.ReceiptCleanupRepository = (*PgxCleanupRepository)(nil)

// ListPendingCleanups implements portsrepo.ReceiptCleanupRepository.
func (r *PgxCleanupRepository) ListPendingCleanups(ctx context.Context, limit int) ([]domain.ReceiptCleanup, error) {
	query := `
		SELECT cleanup_id, receipt_ref, owner_id, transaction_id, reason, attempts, last_error, created_at, last_attempt_at
		FROM receipt_cleanups
		ORDER BY created_at ASC, cleanup_id ASC` + limitClause(limit)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list pending receipt cleanups", err)
	}
	defer rows.Close()

	cleanups := make([]domain.ReceiptCleanup, 0)
	for rows.Next() {
		var c domain.ReceiptCleanup
		if err := rows.Scan(
			&c.CleanupID,
			&c.ReceiptRef,
			&c.OwnerID,
			&c.TransactionID,
			&c.Reason,
			&c.Attempts,
			&c.LastError,
			&c.CreatedAt,
			&c.LastAttemptAt,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan receipt cleanup row", err)
		}
		cleanups = append(cleanups, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating receipt cleanup rows", err)
	}
	return cleanups, nil
}

// MarkCleanupDone implements portsrepo.ReceiptCleanupRepository.
func (r *PgxCleanupRepository) MarkCleanupDone(ctx context.Context, cleanupID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM receipt_cleanups WHERE cleanup_id = $1`, cleanupID); err != nil {
		return apperrors.NewAppError(500, "failed to clear receipt cleanup "+cleanupID, err)
	}
	return nil
}

// RecordCleanupAttempt implements portsrepo.ReceiptCleanupRepository.
func (r *PgxCleanupRepository) RecordCleanupAttempt(ctx context.Context, cleanupID string, lastError string, at time.Time) error {
	query := `
		UPDATE receipt_cleanups
		SET attempts = attempts + 1, last_error = $2, last_attempt_at = $3
		WHERE cleanup_id = $1;
	`
	tag, err := r.pool.Exec(ctx, query, cleanupID, lastError, at)
	if err != nil {
		return apperrors.NewAppError(500, "failed to record receipt cleanup attempt "+cleanupID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
