package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCategoryRepository struct {
	pool *pgxpool.Pool
}

// newPgxCategoryRepository creates a new repository for category data.
func newPgxCategoryRepository(pool *pgxpool.Pool) portsrepo.CategoryRepositoryFacade {
	return &PgxCategoryRepository{pool: pool}
}

var _ portsrepo.CategoryRepositoryFacade = (*PgxCategoryRepository)(nil)

const categoryColumns = `category_id, name, color, icon, owner_id`

func scanCategory(row pgx.Row) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.CategoryID, &c.Name, &c.Color, &c.Icon, &c.OwnerID)
	return c, err
}

func collectCategories(rows pgx.Rows) ([]domain.Category, error) {
	defer rows.Close()
	categories := make([]domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan category row", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating category rows", err)
	}
	return categories, nil
}

// ListCategoriesForOwner implements portsrepo.CategoryReader.
func (r *PgxCategoryRepository) ListCategoriesForOwner(ctx context.Context, ownerID string) ([]domain.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE owner_id IS NULL OR owner_id = $1
		ORDER BY name ASC, category_id ASC;
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list categories", err)
	}
	return collectCategories(rows)
}

// FindCategoryByID implements portsrepo.CategoryReader.
func (r *PgxCategoryRepository) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE category_id = $1`
	c, err := scanCategory(r.pool.QueryRow(ctx, query, categoryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find category "+categoryID, err)
	}
	return &c, nil
}

// FindCategoriesByIDs implements portsrepo.CategoryReader.
func (r *PgxCategoryRepository) FindCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]domain.Category, error) {
	found := make(map[string]domain.Category, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return found, nil
	}
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE category_id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, categoryIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query categories", err)
	}
	categories, err := collectCategories(rows)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		found[c.CategoryID] = c
	}
	return found, nil
}
