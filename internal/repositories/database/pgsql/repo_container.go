package pgsql

import (
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:   newPgxLedgerRepository(dbPool),
		CategoryRepo: newPgxCategoryRepository(dbPool),
		OwnerRepo:    newPgxOwnerRepository(dbPool),
		CleanupRepo:  newPgxCleanupRepository(dbPool),
	}
}
