package report

import (
	"context"
	"fmt"
	"time"

	"github.com/npl/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// ExportResult is a rendered report document ready to stream back
type ExportResult struct {
	Filename  string
	PDFData   []byte
	PageCount int
}

// portfolioSummarySheetData is the template binding for the summary sheet
type portfolioSummarySheetData struct {
	Title       string
	Period      string
	Summary     *PortfolioSummaryResponse
	Delinquency *DelinquencyDistributionResponse
	GeneratedAt time.Time
}

// ReportExportService renders portfolio report views into PDF sheets.
// It reads through ReportService, so exports see the same cached data
// as the JSON endpoints.
type ReportExportService struct {
	reports  *ReportService
	renderer printing.PDFRenderer
	engine   *printing.TemplateEngine
	logger   *zap.Logger
}

// NewReportExportService creates a new ReportExportService
func NewReportExportService(reports *ReportService, renderer printing.PDFRenderer, logger *zap.Logger) *ReportExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportExportService{
		reports:  reports,
		renderer: renderer,
		engine:   printing.NewTemplateEngine(),
		logger:   logger,
	}
}

// PortfolioSummaryPDF renders the portfolio summary sheet for the given
// filter. The delinquency table only appears when a period is set, since
// delinquency is a per-period view.
func (s *ReportExportService) PortfolioSummaryPDF(ctx context.Context, filter PortfolioReportFilter) (*ExportResult, error) {
	summary, err := s.reports.GetPortfolioSummary(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := portfolioSummarySheetData{
		Title:       "Portfolio Summary",
		Period:      filter.Period,
		Summary:     summary,
		GeneratedAt: time.Now(),
	}
	if filter.Period != "" {
		dist, err := s.reports.GetDelinquencyDistribution(ctx, filter)
		if err != nil {
			return nil, err
		}
		data.Delinquency = dist
	}

	html, err := s.engine.RenderString(ctx, "portfolio_summary", portfolioSummaryTemplate, data)
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &printing.RenderRequest{
		HTML:        html,
		PaperSize:   printing.PaperSizeLetter,
		Orientation: printing.OrientationPortrait,
		Margins:     printing.DefaultMargins(),
		Title:       data.Title,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("portfolio summary exported",
		zap.String("period", filter.Period),
		zap.Int("pages", result.PageCount),
		zap.Duration("render_duration", result.RenderDuration))

	return &ExportResult{
		Filename:  exportFilename("portfolio-summary", filter.Period, data.GeneratedAt),
		PDFData:   result.PDFData,
		PageCount: result.PageCount,
	}, nil
}

// exportFilename builds a stable download name like
// portfolio-summary-2026-06_20260824.pdf
func exportFilename(view, period string, generatedAt time.Time) string {
	if period != "" {
		return fmt.Sprintf("%s-%s_%s.pdf", view, period, generatedAt.Format("20060102"))
	}
	return fmt.Sprintf("%s_%s.pdf", view, generatedAt.Format("20060102"))
}
