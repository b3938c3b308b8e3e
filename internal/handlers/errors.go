package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/petty_cash_ledger/internal/apperrors"
	"github.com/SscSPs/petty_cash_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP responses. Infrastructure failures are
// reported with the generic message only.
func respondError(c *gin.Context, logger *slog.Logger, err error, genericMsg string) {
	var insufficient *apperrors.InsufficientFundsError
	var invalid *apperrors.ValidationError

	switch {
	case errors.As(err, &insufficient):
		logger.Warn("Insufficient funds", slog.String("available", insufficient.Available.StringFixed(2)))
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:     "Insufficient funds",
			Available: insufficient.Available.StringFixed(2),
		})
	case errors.As(err, &invalid):
		logger.Warn("Validation error", slog.String("field", invalid.Field), slog.String("reason", invalid.Reason))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: invalid.Field + " " + invalid.Reason, Field: invalid.Field})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Forbidden", slog.String("error", err.Error()))
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "Forbidden"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		logger.Warn("Unauthorized", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Duplicate resource", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "Resource already exists"})
	default:
		logger.Error(genericMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: genericMsg})
	}
}

// respondBindError reports a malformed request body or query.
func respondBindError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request format: " + err.Error()})
}
