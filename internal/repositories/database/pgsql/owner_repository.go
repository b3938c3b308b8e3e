package pgsql

import (
	"context"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxOwnerRepository struct {
	pool *pgxpool.Pool
}

func newPgxOwnerRepository(pool *pgxpool.Pool) portsrepo.OwnerDirectory {
	return &PgxOwnerRepository{pool: pool}
}

var _ portsrepo.OwnerDirectory = (*PgxOwnerRepository)(nil)

// FindOwnerNames implements portsrepo.OwnerDirectory.
func (r *PgxOwnerRepository) FindOwnerNames(ctx context.Context, ownerIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return names, nil
	}
	query := `
		SELECT owner_id, display_name
		FROM ledger_owners
		WHERE owner_id = ANY($1) AND display_name <> '';
	`
	rows, err := r.pool.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query owner names", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan owner row", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating owner rows", err)
	}
	return names, nil
}
