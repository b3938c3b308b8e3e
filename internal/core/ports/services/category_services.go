package services

import (
	"context"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
)

// CategorySvc defines read operations for categories
type CategorySvc interface {
	// ListCategories returns the default categories plus the principal's own.
	ListCategories(ctx context.Context, principal domain.Principal) ([]domain.Category, error)
}
