package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxLedgerRepository struct {
	BaseRepository
	q querier
}

// newPgxLedgerRepository creates a new repository for fund and transaction data.
func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}, q: pool}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryFacade
var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const fundColumns = `fund_id, owner_id, amount, note, effective_date, created_at, created_by, last_updated_at, last_updated_by`

const transactionColumns = `transaction_id, owner_id, amount, description, COALESCE(category_id, ''), effective_date,
	COALESCE(receipt_ref, ''), created_at, created_by, last_updated_at, last_updated_by`

// filterArgs accumulates positional arguments while a WHERE clause is built.
type filterArgs struct {
	conds []string
	args  []any
}

func (f *filterArgs) add(cond string, arg any) {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(f.args))))
}

func (f *filterArgs) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

func buildLedgerFilter(filter domain.LedgerFilter, withCategory bool) *filterArgs {
	fa := &filterArgs{}
	if !filter.Scope.IsAll() {
		fa.add("owner_id = ANY(?)", filter.Scope.OwnerIDs())
	}
	if filter.From != nil {
		fa.add("effective_date >= ?", *filter.From)
	}
	if filter.To != nil {
		fa.add("effective_date <= ?", *filter.To)
	}
	if filter.Before != nil {
		fa.add("effective_date < ?", *filter.Before)
	}
	if withCategory && filter.CategoryID != "" {
		fa.add("category_id = ?", filter.CategoryID)
	}
	return fa
}

func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return " LIMIT " + strconv.Itoa(limit)
}

func scanFund(row pgx.Row) (domain.Fund, error) {
	var f domain.Fund
	err := row.Scan(
		&f.FundID,
		&f.OwnerID,
		&f.Amount,
		&f.Note,
		&f.EffectiveDate,
		&f.CreatedAt,
		&f.CreatedBy,
		&f.LastUpdatedAt,
		&f.LastUpdatedBy,
	)
	return f, err
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.TransactionID,
		&t.OwnerID,
		&t.Amount,
		&t.Description,
		&t.CategoryID,
		&t.EffectiveDate,
		&t.ReceiptRef,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	return t, err
}

// FundsOf implements portsrepo.LedgerReader.
func (r *PgxLedgerRepository) FundsOf(ctx context.Context, filter domain.LedgerFilter) ([]domain.Fund, error) {
	fa := buildLedgerFilter(filter, false)
	query := `SELECT ` + fundColumns + ` FROM funds` + fa.where() +
		` ORDER BY effective_date DESC, created_at DESC, fund_id DESC` + limitClause(filter.Limit)

	rows, err := r.q.Query(ctx, query, fa.args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query funds", err)
	}
	defer rows.Close()

	funds := make([]domain.Fund, 0)
	for rows.Next() {
		f, err := scanFund(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan fund row", err)
		}
		funds = append(funds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating fund rows", err)
	}
	return funds, nil
}

// TransactionsOf implements portsrepo.LedgerReader.
func (r *PgxLedgerRepository) TransactionsOf(ctx context.Context, filter domain.LedgerFilter) ([]domain.Transaction, error) {
	fa := buildLedgerFilter(filter, true)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + fa.where() +
		` ORDER BY effective_date DESC, created_at DESC, transaction_id DESC` + limitClause(filter.Limit)

	rows, err := r.q.Query(ctx, query, fa.args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}
	return txns, nil
}

// FindTransactionByID implements portsrepo.LedgerReader.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`
	t, err := scanTransaction(r.q.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction "+transactionID, err)
	}
	return &t, nil
}

// SaveFund implements portsrepo.LedgerWriter.
func (r *PgxLedgerRepository) SaveFund(ctx context.Context, fund domain.Fund) error {
	query := `
		INSERT INTO funds (` + fundColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.q.Exec(ctx, query,
		fund.FundID,
		fund.OwnerID,
		fund.Amount,
		fund.Note,
		fund.EffectiveDate,
		fund.CreatedAt,
		fund.CreatedBy,
		fund.LastUpdatedAt,
		fund.LastUpdatedBy,
	)
	if err != nil {
		return wrapWriteErr(err, "fund", fund.FundID)
	}
	return nil
}

// SaveTransaction implements portsrepo.LedgerWriter.
func (r *PgxLedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			transaction_id, owner_id, amount, description, category_id, effective_date,
			receipt_ref, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), $8, $9, $10, $11);
	`
	_, err := r.q.Exec(ctx, query,
		txn.TransactionID,
		txn.OwnerID,
		txn.Amount,
		txn.Description,
		txn.CategoryID,
		txn.EffectiveDate,
		txn.ReceiptRef,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return wrapWriteErr(err, "transaction", txn.TransactionID)
	}
	return nil
}

// UpdateTransaction implements portsrepo.LedgerWriter.
func (r *PgxLedgerRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	query := `
		UPDATE transactions
		SET amount = $2, description = $3, category_id = NULLIF($4, ''), effective_date = $5,
			receipt_ref = NULLIF($6, ''), last_updated_at = $7, last_updated_by = $8
		WHERE transaction_id = $1;
	`
	tag, err := r.q.Exec(ctx, query,
		txn.TransactionID,
		txn.Amount,
		txn.Description,
		txn.CategoryID,
		txn.EffectiveDate,
		txn.ReceiptRef,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update transaction "+txn.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteTransaction implements portsrepo.LedgerWriter.
func (r *PgxLedgerRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete transaction "+transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SavePendingCleanup implements portsrepo.LedgerWriter.
func (r *PgxLedgerRepository) SavePendingCleanup(ctx context.Context, cleanup domain.ReceiptCleanup) error {
	query := `
		INSERT INTO receipt_cleanups (
			cleanup_id, receipt_ref, owner_id, transaction_id, reason, attempts, last_error, created_at, last_attempt_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.q.Exec(ctx, query,
		cleanup.CleanupID,
		cleanup.ReceiptRef,
		cleanup.OwnerID,
		cleanup.TransactionID,
		cleanup.Reason,
		cleanup.Attempts,
		cleanup.LastError,
		cleanup.CreatedAt,
		cleanup.LastAttemptAt,
	)
	if err != nil {
		return wrapWriteErr(err, "receipt cleanup", cleanup.CleanupID)
	}
	return nil
}

// WithOwnerLock implements portsrepo.LedgerUnitOfWork. The owner row is upserted and
// then locked with SELECT ... FOR UPDATE, so concurrent writers for the same owner
// queue behind each other until commit.
func (r *PgxLedgerRepository) WithOwnerLock(ctx context.Context, owner domain.Owner, fn func(ctx context.Context, store portsrepo.LedgerStore) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	// Defer rollback in case of error
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	upsert := `
		INSERT INTO ledger_owners (owner_id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (owner_id) DO UPDATE
		SET display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), ledger_owners.display_name);
	`
	if _, err := tx.Exec(ctx, upsert, owner.OwnerID, owner.DisplayName); err != nil {
		return apperrors.NewAppError(500, "failed to record ledger owner "+owner.OwnerID, err)
	}

	var lockedID string
	lock := `SELECT owner_id FROM ledger_owners WHERE owner_id = $1 FOR UPDATE`
	if err := tx.QueryRow(ctx, lock, owner.OwnerID).Scan(&lockedID); err != nil {
		return apperrors.NewAppError(500, "failed to lock ledger of owner "+owner.OwnerID, err)
	}

	store := &PgxLedgerRepository{BaseRepository: r.BaseRepository, q: tx}
	if err := fn(ctx, store); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return fmt.Errorf("commit ledger of owner %s: %w", owner.OwnerID, err)
	}
	return nil
}
