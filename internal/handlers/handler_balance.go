package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/dto"
	"github.com/SscSPs/petty_cash_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// balanceHandler handles HTTP requests related to balances.
type balanceHandler struct {
	balanceService     portssvc.BalanceSvcFacade
	transactionService portssvc.TransactionReaderSvc
	identity           portssvc.IdentityProvider
}

func registerBalanceRoutes(rg *gin.RouterGroup, bs portssvc.BalanceSvcFacade, ts portssvc.TransactionReaderSvc, identity portssvc.IdentityProvider) {
	h := &balanceHandler{balanceService: bs, transactionService: ts, identity: identity}
	rg.GET("/balance", h.getBalance)
	rg.GET("/overview", h.getOverview)
}

// getBalance godoc
// @Summary Get the current balance
// @Description Returns the caller's balance. Administrators may pass ownerId, or omit it for the total across ledgers.
// @Tags balance
// @Produce  json
// @Param   ownerId query string false "Owner ID (administrators only)"
// @Success 200 {object} dto.BalanceResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to calculate balance"
// @Security BearerAuth
// @Router /balance [get]
func (h *balanceHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := principalFor(c, h.identity, logger)
	if !ok {
		return
	}

	var params dto.BalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}

	balance, err := h.balanceService.GetBalance(c.Request.Context(), principal, params.OwnerID)
	if err != nil {
		respondError(c, logger, err, "Failed to calculate balance")
		return
	}

	ownerID := principal.ID
	if principal.IsAdmin {
		ownerID = params.OwnerID
	}
	logger.Debug("Balance calculated", slog.String("owner_id", ownerID))
	c.JSON(http.StatusOK, dto.BalanceResponse{OwnerID: ownerID, Balance: balance})
}

// getOverview godoc
// @Summary Get the dashboard overview
// @Description Current balance, totals, this month's spending and the five most recent transactions.
// @Tags balance
// @Produce  json
// @Success 200 {object} dto.OverviewResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to load overview"
// @Security BearerAuth
// @Router /overview [get]
func (h *balanceHandler) getOverview(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := principalFor(c, h.identity, logger)
	if !ok {
		return
	}

	overview, err := h.balanceService.Overview(c.Request.Context(), principal)
	if err != nil {
		respondError(c, logger, err, "Failed to load overview")
		return
	}

	ctx := c.Request.Context()
	c.JSON(http.StatusOK, dto.ToOverviewResponse(overview, func(t domain.Transaction) string {
		return h.transactionService.ReceiptURL(ctx, t)
	}))
}
