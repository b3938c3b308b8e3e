package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/dto"
	"github.com/SscSPs/petty_cash_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests related to transactions.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
	identity           portssvc.IdentityProvider
}

func registerTransactionRoutes(rg *gin.RouterGroup, ts portssvc.TransactionSvcFacade, identity portssvc.IdentityProvider) {
	h := &transactionHandler{transactionService: ts, identity: identity}

	txns := rg.Group("/transactions")
	{
		txns.POST("", h.createTransaction)
		txns.GET("", h.listTransactions)
		txns.GET("/:transactionID", h.getTransaction)
		txns.PUT("/:transactionID", h.updateTransaction)
		txns.DELETE("/:transactionID", h.deleteTransaction)
		txns.DELETE("/:transactionID/receipt", h.removeReceipt)
	}
}

func (h *transactionHandler) respond(ctx context.Context, c *gin.Context, status int, txn *domain.Transaction) {
	c.JSON(status, dto.ToTransactionResponse(*txn, h.transactionService.ReceiptURL(ctx, *txn)))
}

// bindCreateRequest reads a JSON body or a multipart form with an optional receipt file.
// The boolean result is false when a response has already been written.
func bindCreateRequest(c *gin.Context, logger *slog.Logger) (dto.CreateTransactionRequest, *domain.ReceiptUpload, bool) {
	var req dto.CreateTransactionRequest
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, logger, err)
			return req, nil, false
		}
		return req, nil, true
	}

	amount, err := dto.ParseAmount("amount", c.PostForm("amount"))
	if err != nil {
		respondError(c, logger, err, "Failed to create transaction")
		return req, nil, false
	}
	req = dto.CreateTransactionRequest{
		Amount:        amount,
		Description:   c.PostForm("description"),
		CategoryID:    c.PostForm("categoryID"),
		EffectiveDate: c.PostForm("effectiveDate"),
	}
	receipt, err := readReceipt(c)
	if err != nil {
		respondError(c, logger, err, "Failed to read receipt")
		return req, nil, false
	}
	return req, receipt, true
}

func bindUpdateRequest(c *gin.Context, logger *slog.Logger) (dto.UpdateTransactionRequest, *domain.ReceiptUpload, bool) {
	var req dto.UpdateTransactionRequest
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, logger, err)
			return req, nil, false
		}
		return req, nil, true
	}

	if v, ok := c.GetPostForm("amount"); ok {
		amount, err := dto.ParseAmount("amount", v)
		if err != nil {
			respondError(c, logger, err, "Failed to update transaction")
			return req, nil, false
		}
		req.Amount = &amount
	}
	if v, ok := c.GetPostForm("description"); ok {
		req.Description = &v
	}
	if v, ok := c.GetPostForm("categoryID"); ok {
		req.CategoryID = &v
	}
	if v, ok := c.GetPostForm("effectiveDate"); ok {
		req.EffectiveDate = &v
	}
	if v, ok := c.GetPostForm("removeReceipt"); ok && v != "" {
		remove, err := strconv.ParseBool(v)
		if err != nil {
			respondError(c, logger, apperrors.NewValidationError("removeReceipt", "must be a boolean"), "Failed to update transaction")
			return req, nil, false
		}
		req.RemoveReceipt = remove
	}
	receipt, err := readReceipt(c)
	if err != nil {
		respondError(c, logger, err, "Failed to read receipt")
		return req, nil, false
	}
	return req, receipt, true
}

// createTransaction godoc
// @Summary Record an expense
// @Description Records an expense on the caller's own ledger. Send JSON, or multipart/form-data with an optional "receipt" file.
// @Tags transactions
// @Accept  json,mpfd
// @Produce  json
// @Param   transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 422 {object} dto.ErrorResponse "Insufficient funds"
// @Failure 500 {object} dto.ErrorResponse "Failed to create transaction"
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := principalFor(c, h.identity, logger)
	if !ok {
		return
	}

	req, receipt, ok := bindCreateRequest(c, logger)
	if !ok {
		return
	}
	draft, err := req.ToDraft(receipt)
	if err != nil {
		respondError(c, logger, err, "Failed to create transaction")
		return
	}

	txn, err := h.transactionService.Post(c.Request.Context(), principal, draft)
	if err != nil {
		respondError(c, logger, err, "Failed to create transaction")
		return
	}

	logger.Info("Transaction created", slog.String("transaction_id", txn.TransactionID))
	h.respond(c.Request.Context(), c, http.StatusCreated, txn)
}

// listTransactions godoc
// @Summary List transactions
// @Description Lists transactions newest first. Non-administrators only see their own.
// @Tags transactions
// @Produce  json
// @Param   startDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param   endDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Param   categoryId query string false "Category ID"
// @Param   ownerId query string false "Owner ID (administrators only)"
// @Param   limit query int false "Maximum number of results"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list transactions"
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := principalFor(c, h.identity, logger)
	if !ok {
		return
	}

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}
	filter, err := params.ToFilter()
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}

	ctx := c.Request.Context()
	txns, err := h.transactionService.ListTransactions(ctx, principal, filter)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}

	resp := dto.ListTransactionsResponse{Transactions: make([]dto.TransactionResponse, len(txns))}
	for i, t := range txns {
		resp.Transactions[i] = dto.ToTransactionResponse(t, h.transactionService.ReceiptURL(ctx, t))
	}
	c.JSON(http.StatusOK, resp)
}

// getTransaction godoc
// @Summary Get a transaction by ID
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := principalFor(c, h.identity, logger)
	if !ok {
		return
	}
	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID))

	txn, err := h.transactionService.GetTransaction(c.Request.Context(), principal, transactionID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve transaction")
		return
	}
	h.respond(c.Request.Context(), c, http.StatusOK, txn)
}

// updateTransaction godoc
// @Summary Update a transaction
// @Description Applies a partial update. Send JSON, or multipart/form-data with an optional replacement "receipt" file.
// @Tags transactions
// @Accept  json,mpfd
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   transaction body dto.UpdateTransactionRequest true "Fields to update"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 422 {object} dto.ErrorResponse "Insufficient funds"
// @Failure 500 {object} dto.ErrorResponse "Failed to update transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID} [put]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := principalFor(c, h.identity, logger)
	if !ok {
		return
	}
	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID))

	req, receipt, ok := bindUpdateRequest(c, logger)
	if !ok {
		return
	}
	patch, err := req.ToPatch(receipt)
	if err != nil {
		respondError(c, logger, err, "Failed to update transaction")
		return
	}

	txn, err := h.transactionService.Edit(c.Request.Context(), principal, transactionID, patch)
	if err != nil {
		respondError(c, logger, err, "Failed to update transaction")
		return
	}

	logger.Info("Transaction updated")
	h.respond(c.Request.Context(), c, http.StatusOK, txn)
}

// deleteTransaction godoc
// @Summary Delete a transaction
// @Tags transactions
// @Param   transactionID path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to delete transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := principalFor(c, h.identity, logger)
	if !ok {
		return
	}
	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID))

	if err := h.transactionService.Delete(c.Request.Context(), principal, transactionID); err != nil {
		respondError(c, logger, err, "Failed to delete transaction")
		return
	}

	logger.Info("Transaction deleted")
	c.Status(http.StatusNoContent)
}

// removeReceipt godoc
// @Summary Remove a transaction's receipt
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Transaction not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to remove receipt"
// @Security BearerAuth
// @Router /transactions/{transactionID}/receipt [delete]
func (h *transactionHandler) removeReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := principalFor(c, h.identity, logger)
	if !ok {
		return
	}
	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID))

	txn, err := h.transactionService.RemoveReceipt(c.Request.Context(), principal, transactionID)
	if err != nil {
		respondError(c, logger, err, "Failed to remove receipt")
		return
	}

	logger.Info("Receipt removed")
	h.respond(c.Request.Context(), c, http.StatusOK, txn)
}
