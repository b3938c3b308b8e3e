package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/petty_cash_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
)

type categoryService struct {
	BaseService
	categoryRepo portsrepo.CategoryReader
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo portsrepo.CategoryReader) portssvc.CategorySvc {
	return &categoryService{BaseService: newBaseService(nil, nil), categoryRepo: categoryRepo}
}

var _ portssvc.CategorySvc = (*categoryService)(nil)

// ListCategories implements portssvc.CategorySvc.
func (s *categoryService) ListCategories(ctx context.Context, principal domain.Principal) ([]domain.Category, error) {
	categories, err := s.categoryRepo.ListCategoriesForOwner(ctx, principal.ID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list categories", slog.String("owner_id", principal.ID))
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
