package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/dto"
	"github.com/SscSPs/petty_cash_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// fundHandler handles HTTP requests related to funds.
type fundHandler struct {
	fundService portssvc.FundSvcFacade
	identity    portssvc.IdentityProvider
}

func registerFundRoutes(rg *gin.RouterGroup, fs portssvc.FundSvcFacade, identity portssvc.IdentityProvider) {
	h := &fundHandler{fundService: fs, identity: identity}

	funds := rg.Group("/funds")
	{
		funds.POST("", h.addFund)
		funds.GET("", h.listFunds)
	}
}

// addFund godoc
// @Summary Top up the float
// @Description Records a fund on the caller's own ledger
// @Tags funds
// @Accept  json
// @Produce  json
// @Param   fund body dto.CreateFundRequest true "Fund details"
// @Success 201 {object} dto.FundResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to add fund"
// @Security BearerAuth
// @Router /funds [post]
func (h *fundHandler) addFund(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := principalFor(c, h.identity, logger)
	if !ok {
		return
	}

	var req dto.CreateFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	draft, err := req.ToDraft()
	if err != nil {
		respondError(c, logger, err, "Failed to add fund")
		return
	}

	fund, err := h.fundService.AddFund(c.Request.Context(), principal, draft)
	if err != nil {
		respondError(c, logger, err, "Failed to add fund")
		return
	}

	logger.Info("Fund added", slog.String("fund_id", fund.FundID))
	c.JSON(http.StatusCreated, dto.ToFundResponse(*fund))
}

// listFunds godoc
// @Summary List funds
// @Description Lists funds newest first. Administrators may pass ownerId, or omit it to see every ledger.
// @Tags funds
// @Produce  json
// @Param   ownerId query string false "Owner ID (administrators only)"
// @Success 200 {array} dto.FundResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list funds"
// @Security BearerAuth
// @Router /funds [get]
func (h *fundHandler) listFunds(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := principalFor(c, h.identity, logger)
	if !ok {
		return
	}

	var params dto.ListFundsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}

	funds, err := h.fundService.ListFunds(c.Request.Context(), principal, params.OwnerID)
	if err != nil {
		respondError(c, logger, err, "Failed to list funds")
		return
	}
	c.JSON(http.StatusOK, dto.ToFundResponses(funds))
}
