package repositories

import (
	"context"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
)

// CategoryReader defines read operations for categories
type CategoryReader interface {
	// ListCategoriesForOwner returns the default categories plus the owner's own, sorted by name.
	ListCategoriesForOwner(ctx context.Context, ownerID string) ([]domain.Category, error)

	// FindCategoryByID returns apperrors.ErrNotFound when the category does not exist.
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)

	// FindCategoriesByIDs returns the categories found, keyed by ID. Unknown IDs are omitted.
	FindCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]domain.Category, error)
}

// CategoryRepositoryFacade combines all category-related repository interfaces
type CategoryRepositoryFacade interface {
	CategoryReader
}
