package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/petty_cash_ledger/internal/core/ports/services"
	"github.com/SscSPs/petty_cash_ledger/internal/dto"
	"github.com/SscSPs/petty_cash_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests for reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
	identity         portssvc.IdentityProvider
}

func registerReportingRoutes(rg *gin.RouterGroup, rs portssvc.ReportingService, identity portssvc.IdentityProvider) {
	h := &reportingHandler{reportingService: rs, identity: identity}

	reports := rg.Group("/reports")
	{
		reports.GET("", h.getReport)
		reports.GET("/export", h.exportReport)
	}
}

// getReport godoc
// @Summary Generate a period report
// @Description Transactions and summary for an inclusive date range. Dates default to the current month.
// @Tags reports
// @Produce  json
// @Param   startDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param   endDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Param   categoryId query string false "Category ID"
// @Param   ownerId query string false "Owner ID (administrators only)"
// @Success 200 {object} dto.ReportResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports [get]
func (h *reportingHandler) getReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := principalFor(c, h.identity, logger)
	if !ok {
		return
	}

	var params dto.ReportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}
	filter, err := params.ToFilter()
	if err != nil {
		respondError(c, logger, err, "Failed to generate report")
		return
	}

	report, err := h.reportingService.Generate(c.Request.Context(), principal, filter)
	if err != nil {
		respondError(c, logger, err, "Failed to generate report")
		return
	}

	logger.Info("Report generated", slog.Int("transactions", report.Summary.TotalCount))
	c.JSON(http.StatusOK, dto.ToReportResponse(report))
}

// exportReport godoc
// @Summary Export a period report
// @Description Same parameters as the report; returns a UTF-8 CSV attachment, an XLSX workbook with format=xlsx or Markdown with format=md
// @Tags reports
// @Produce  text/csv
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce  text/markdown
// @Param   startDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param   endDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Param   categoryId query string false "Category ID"
// @Param   ownerId query string false "Owner ID (administrators only)"
// @Param   format query string false "Document format" Enums(csv, xlsx, md)
// @Success 200 {file} file "Report document"
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to export report"
// @Security BearerAuth
// @Router /reports/export [get]
func (h *reportingHandler) exportReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	principal, ok := principalFor(c, h.identity, logger)
	if !ok {
		return
	}

	var params dto.ExportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}
	filter, err := params.ToFilter()
	if err != nil {
		respondError(c, logger, err, "Failed to export report")
		return
	}
	format, err := dto.ParseExportFormat(params.Format)
	if err != nil {
		respondError(c, logger, err, "Failed to export report")
		return
	}

	data, filename, err := h.reportingService.Export(c.Request.Context(), principal, filter, format)
	if err != nil {
		respondError(c, logger, err, "Failed to export report")
		return
	}

	logger.Info("Report exported", slog.String("filename", filename), slog.Int("bytes", len(data)))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, format.ContentType(), data)
}
