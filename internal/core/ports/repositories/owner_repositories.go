package repositories

import (
	"context"
)

// OwnerDirectory resolves owner display names.
type OwnerDirectory interface {
	// FindOwnerNames returns display names keyed by owner ID. Unknown IDs are omitted.
	FindOwnerNames(ctx context.Context, ownerIDs []string) (map[string]string, error)
}
