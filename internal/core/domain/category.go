package domain

// Category classifies transactions. A nil OwnerID marks a system-wide default.
type Category struct {
	CategoryID string  `json:"categoryID"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Icon       string  `json:"icon"`
	OwnerID    *string `json:"ownerID,omitempty"`
}

// IsDefault reports whether the category is visible to everyone.
func (c Category) IsDefault() bool {
	return c.OwnerID == nil
}

// VisibleTo reports whether the owner may file transactions under this category.
func (c Category) VisibleTo(ownerID string) bool {
	return c.OwnerID == nil || *c.OwnerID == ownerID
}

// UncategorizedLabel is rendered wherever a transaction has no resolvable category.
const UncategorizedLabel = "-"

// DefaultCategories are available to every owner. The database migration seeds the same rows.
func DefaultCategories() []Category {
	return []Category{
		{CategoryID: "food-beverages", Name: "Food & Beverages", Color: "#F97316", Icon: "utensils"},
		{CategoryID: "miscellaneous", Name: "Miscellaneous", Color: "#6B7280", Icon: "box"},
		{CategoryID: "office-supplies", Name: "Office Supplies", Color: "#3B82F6", Icon: "pencil-ruler"},
		{CategoryID: "other", Name: "Other", Color: "#9CA3AF", Icon: "more-horizontal"},
		{CategoryID: "transportation", Name: "Transportation", Color: "#8B5CF6", Icon: "car"},
	}
}
