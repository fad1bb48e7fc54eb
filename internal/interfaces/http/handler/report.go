package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/npl/backend/internal/application/report"
	"github.com/npl/backend/internal/infrastructure/printing"
	"github.com/npl/backend/internal/infrastructure/scheduler"
)

// ReportHandler handles portfolio report HTTP requests. cronScheduler
// is nil when the nightly refresh is disabled; the scheduler endpoints
// then report it as such.
type ReportHandler struct {
	BaseHandler
	reportService *report.ReportService
	exportService *report.ReportExportService
	cronScheduler *scheduler.ReportCronScheduler
}

func NewReportHandler(reportService *report.ReportService, exportService *report.ReportExportService, cronScheduler *scheduler.ReportCronScheduler) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		exportService: exportService,
		cronScheduler: cronScheduler,
	}
}

func (h *ReportHandler) bindFilter(c *gin.Context) (report.PortfolioReportFilter, bool) {
	var filter report.PortfolioReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return filter, false
	}
	return filter, true
}

// PortfolioSummary godoc
// @Summary      Get the portfolio summary
// @Description  Whole-book asset counts, UPB and reconciled value
// @Tags         reports
// @Produce      json
// @Param        trade_id query string false "Filter by trade" format(uuid)
// @Param        seller_id query string false "Filter by seller" format(uuid)
// @Param        period query string false "Servicing period (YYYY-MM)"
// @Success      200 {object} dto.Response{data=report.PortfolioSummaryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/portfolio-summary [get]
func (h *ReportHandler) PortfolioSummary(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	result, err := h.reportService.GetPortfolioSummary(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// TradePipeline godoc
// @Summary      Get the trade pipeline report
// @Tags         reports
// @Produce      json
// @Param        seller_id query string false "Filter by seller" format(uuid)
// @Success      200 {object} dto.Response{data=[]report.TradePipelineRowResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/trade-pipeline [get]
func (h *ReportHandler) TradePipeline(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	result, err := h.reportService.GetTradePipeline(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DelinquencyDistribution godoc
// @Summary      Get the delinquency distribution report
// @Tags         reports
// @Produce      json
// @Param        trade_id query string false "Filter by trade" format(uuid)
// @Param        period query string false "Servicing period (YYYY-MM)"
// @Success      200 {object} dto.Response{data=report.DelinquencyDistributionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/delinquency [get]
func (h *ReportHandler) DelinquencyDistribution(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	result, err := h.reportService.GetDelinquencyDistribution(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// TrackSummary godoc
// @Summary      Get the workout track summary report
// @Tags         reports
// @Produce      json
// @Param        trade_id query string false "Filter by trade" format(uuid)
// @Success      200 {object} dto.Response{data=[]report.TrackSummaryRowResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/track-summary [get]
func (h *ReportHandler) TrackSummary(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	result, err := h.reportService.GetTrackSummary(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ValuationCoverage godoc
// @Summary      Get the valuation coverage report
// @Description  Share of assets carrying a fresh valuation, by trade
// @Tags         reports
// @Produce      json
// @Param        trade_id query string false "Filter by trade" format(uuid)
// @Success      200 {object} dto.Response{data=[]report.ValuationCoverageRowResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/valuation-coverage [get]
func (h *ReportHandler) ValuationCoverage(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	result, err := h.reportService.GetValuationCoverage(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ExportPortfolioSummary godoc
// @Summary      Export the portfolio summary as PDF
// @Description  Renders the summary sheet, with the delinquency table when a period is given
// @Tags         reports
// @Produce      application/pdf
// @Param        trade_id query string false "Filter by trade" format(uuid)
// @Param        seller_id query string false "Filter by seller" format(uuid)
// @Param        period query string false "Servicing period (YYYY-MM)"
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/portfolio-summary/export [get]
func (h *ReportHandler) ExportPortfolioSummary(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	result, err := h.exportService.PortfolioSummaryPDF(c.Request.Context(), filter)
	if err != nil {
		h.handleRenderError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", result.PDFData)
}

// handleRenderError maps printing failures onto HTTP statuses before
// falling back to the shared domain error mapping.
func (h *ReportHandler) handleRenderError(c *gin.Context, err error) {
	var renderErr *printing.RenderError
	if errors.As(err, &renderErr) {
		switch renderErr.Code {
		case printing.ErrCodeRenderDisabled:
			h.Conflict(c, renderErr.Message)
		case printing.ErrCodeRenderTimeout:
			h.Error(c, http.StatusGatewayTimeout, renderErr.Code, renderErr.Message)
		default:
			h.Error(c, http.StatusInternalServerError, renderErr.Code, renderErr.Message)
		}
		return
	}
	h.HandleError(c, err)
}

// Refresh godoc
// @Summary      Refresh report caches
// @Description  Recompute and re-warm the unfiltered report views
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/refresh [post]
func (h *ReportHandler) Refresh(c *gin.Context) {
	if err := h.reportService.Refresh(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "Report caches refreshed"})
}

// SchedulerStatus godoc
// @Summary      Get the nightly refresh scheduler status
// @Description  Current schedule, last/next run and the most recent run per view
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/scheduler [get]
func (h *ReportHandler) SchedulerStatus(c *gin.Context) {
	if h.cronScheduler == nil {
		h.Success(c, gin.H{"enabled": false})
		return
	}

	status := h.cronScheduler.GetStatus()

	lastRuns, err := h.cronScheduler.LastRunRecords(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	status["last_runs"] = lastRuns

	h.Success(c, status)
}

// TriggerSchedulerRun godoc
// @Summary      Trigger the nightly refresh out of schedule
// @Description  Queues a recompute of every portfolio view for the latest servicing period
// @Tags         reports
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/scheduler/run [post]
func (h *ReportHandler) TriggerSchedulerRun(c *gin.Context) {
	if h.cronScheduler == nil {
		h.Conflict(c, "Report scheduler is disabled")
		return
	}

	if err := h.cronScheduler.TriggerManualRun(c.Request.Context()); err != nil {
		h.Conflict(c, "Report scheduler is not running")
		return
	}

	h.Success(c, gin.H{"message": "Nightly refresh triggered"})
}

// TriggerPeriodAggregation godoc
// @Summary      Recompute every view for a servicing period
// @Tags         reports
// @Produce      json
// @Param        period query string true "Servicing period (YYYY-MM)"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /reports/scheduler/aggregate [post]
func (h *ReportHandler) TriggerPeriodAggregation(c *gin.Context) {
	if h.cronScheduler == nil {
		h.Conflict(c, "Report scheduler is disabled")
		return
	}

	period := c.Query("period")
	if !periodPattern.MatchString(period) {
		h.BadRequest(c, "period must be YYYY-MM")
		return
	}

	if err := h.cronScheduler.TriggerPeriodAggregation(c.Request.Context(), period); err != nil {
		h.Conflict(c, "Report scheduler is not running")
		return
	}

	h.Success(c, gin.H{"message": "Period aggregation queued", "period": period})
}
