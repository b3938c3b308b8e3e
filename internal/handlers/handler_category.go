package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/dto"
	"github.com/SscSPs/petty_cash_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type categoryHandler struct {
	categoryService portssvc.CategorySvc
	identity        portssvc.IdentityProvider
}

func registerCategoryRoutes(rg *gin.RouterGroup, cs portssvc.CategorySvc, identity portssvc.IdentityProvider) {
	h := &categoryHandler{categoryService: cs, identity: identity}
	rg.GET("/categories", h.listCategories)
}

// listCategories godoc
// @Summary List categories
// @Description Default categories plus the caller's own, sorted by name
// @Tags categories
// @Produce  json
// @Success 200 {array} dto.CategoryResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list categories"
// @Security BearerAuth
// @Router /categories [get]
func (h *categoryHandler) listCategories(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := principalFor(c, h.identity, logger)
	if !ok {
		return
	}

	categories, err := h.categoryService.ListCategories(c.Request.Context(), principal)
	if err != nil {
		respondError(c, logger, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryResponses(categories))
}
