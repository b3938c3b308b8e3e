package dto

import "github.com/SscSPs/petty_cash_ledger/internal/core/domain"

// CategoryResponse defines the data returned for a category.
type CategoryResponse struct {
	CategoryID string `json:"categoryID"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Icon       string `json:"icon"`
	IsDefault  bool   `json:"isDefault"`
}

// ToCategoryResponses converts a list of categories.
func ToCategoryResponses(categories []domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = CategoryResponse{
			CategoryID: c.CategoryID,
			Name:       c.Name,
			Color:      c.Color,
			Icon:       c.Icon,
			IsDefault:  c.IsDefault(),
		}
	}
	return out
}
