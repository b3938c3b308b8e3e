package middleware

import (
	"context"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
)

// principalKey is the key used to store the authenticated principal in the request context.
const principalKey = contextKey("principal")

// WithPrincipal returns a copy of ctx carrying the principal.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipalFromCtx retrieves the authenticated principal.
// It returns the principal and a boolean indicating if it was found.
func GetPrincipalFromCtx(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(domain.Principal)
	if !ok || p.ID == "" {
		return domain.Principal{}, false
	}
	return p, true
}

// ContextIdentityProvider resolves principals placed in the context by AuthMiddleware.
type ContextIdentityProvider struct{}

var _ portssvc.IdentityProvider = ContextIdentityProvider{}

// CurrentPrincipal implements portssvc.IdentityProvider.
func (ContextIdentityProvider) CurrentPrincipal(ctx context.Context) (domain.Principal, error) {
	p, ok := GetPrincipalFromCtx(ctx)
	if !ok {
		return domain.Principal{}, apperrors.ErrUnauthorized
	}
	return p, nil
}
