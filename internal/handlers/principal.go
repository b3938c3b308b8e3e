package handlers

import (
	"log/slog"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// principalFor resolves the acting principal and writes a 401 when there is none.
func principalFor(c *gin.Context, identity portssvc.IdentityProvider, logger *slog.Logger) (domain.Principal, bool) {
	p, err := identity.CurrentPrincipal(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to resolve principal")
		return domain.Principal{}, false
	}
	return p, true
}
