package services

import (
	"context"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
)

// IdentityProvider resolves the acting principal for a request.
type IdentityProvider interface {
	// CurrentPrincipal fails with apperrors.ErrUnauthorized when nobody is signed in.
	CurrentPrincipal(ctx context.Context) (domain.Principal, error)
}
