package report

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportCache is a read-through cache for computed report payloads.
// A nil entry and a miss are the same thing to callers.
type ReportCache interface {
	// Get returns the cached payload, or (nil, false, nil) on a miss
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a payload with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// DeletePrefix drops every entry whose key starts with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}

// reportCacheKeyPrefix namespaces report entries in the shared cache
const reportCacheKeyPrefix = "report:"

// ReportServiceConfig holds cache tunables for the report layer
type ReportServiceConfig struct {
	CacheTTL time.Duration
}

// DefaultReportServiceConfig returns the default configuration
func DefaultReportServiceConfig() ReportServiceConfig {
	return ReportServiceConfig{
		CacheTTL: 5 * time.Minute,
	}
}

// ReportService provides application-level portfolio report operations.
// Reads go through the cache when one is configured; the nightly refresh
// re-warms the unfiltered views.
type ReportService struct {
	reportRepo report.PortfolioReportRepository
	cache      ReportCache
	config     ReportServiceConfig
	logger     *zap.Logger
}

// NewReportService creates a new ReportService. cache may be nil, in
// which case every read hits the repository.
func NewReportService(reportRepo report.PortfolioReportRepository, cache ReportCache, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reportRepo: reportRepo,
		cache:      cache,
		config:     DefaultReportServiceConfig(),
		logger:     logger,
	}
}

// SetConfig sets the service configuration
func (s *ReportService) SetConfig(config ReportServiceConfig) {
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultReportServiceConfig().CacheTTL
	}
	s.config = config
}

// PortfolioSummaryResponse represents the whole-book snapshot
type PortfolioSummaryResponse struct {
	AsOf             time.Time `json:"as_of"`
	ActiveAssets     int64     `json:"active_assets"`
	LiquidatedAssets int64     `json:"liquidated_assets"`
	SoldAssets       int64     `json:"sold_assets"`
	TotalUPB         float64   `json:"total_upb"`
	AvgUPB           float64   `json:"avg_upb"`
	TotalAsIsValue   float64   `json:"total_as_is_value"`
	WeightedRate     float64   `json:"weighted_rate"`
}

// TradePipelineRowResponse represents one trade in the pipeline view
type TradePipelineRowResponse struct {
	TradeID        string     `json:"trade_id"`
	TradeNumber    string     `json:"trade_number"`
	SellerName     string     `json:"seller_name"`
	Status         string     `json:"status"`
	LoanCount      int64      `json:"loan_count"`
	TotalUPB       float64    `json:"total_upb"`
	BidAmount      float64    `json:"bid_amount"`
	BidPctOfUPB    float64    `json:"bid_pct_of_upb"`
	SettlementDate *time.Time `json:"settlement_date,omitempty"`
}

// DelinquencyBandResponse represents one delinquency bucket
type DelinquencyBandResponse struct {
	Bucket    string  `json:"bucket"`
	LoanCount int64   `json:"loan_count"`
	TotalUPB  float64 `json:"total_upb"`
	PctOfUPB  float64 `json:"pct_of_upb"`
}

// DelinquencyDistributionResponse represents the per-period bucket breakdown
type DelinquencyDistributionResponse struct {
	Period string                    `json:"period"`
	Bands  []DelinquencyBandResponse `json:"bands"`
}

// TrackSummaryRowResponse represents track counts for one type and status
type TrackSummaryRowResponse struct {
	TrackType string `json:"track_type"`
	Status    string `json:"status"`
	Count     int64  `json:"count"`
}

// ValuationCoverageRowResponse represents per-source valuation coverage
type ValuationCoverageRowResponse struct {
	Source     string `json:"source"`
	AssetCount int64  `json:"asset_count"`
	StaleCount int64  `json:"stale_count"`
}

// PortfolioReportFilter defines the request filter for portfolio reports
type PortfolioReportFilter struct {
	TradeID  *uuid.UUID `form:"trade_id"`
	SellerID *uuid.UUID `form:"seller_id"`
	Period   string     `form:"period"`
}

func (f PortfolioReportFilter) toDomain() report.PortfolioReportFilter {
	return report.PortfolioReportFilter{
		TradeID:  f.TradeID,
		SellerID: f.SellerID,
		Period:   f.Period,
	}
}

// cacheKey builds a deterministic key for one report view and filter
func (f PortfolioReportFilter) cacheKey(view string) string {
	parts := []string{reportCacheKeyPrefix + view}
	if f.TradeID != nil {
		parts = append(parts, "trade="+f.TradeID.String())
	}
	if f.SellerID != nil {
		parts = append(parts, "seller="+f.SellerID.String())
	}
	if f.Period != "" {
		parts = append(parts, "period="+f.Period)
	}
	return strings.Join(parts, ":")
}

// GetPortfolioSummary returns the whole-book snapshot
func (s *ReportService) GetPortfolioSummary(ctx context.Context, filter PortfolioReportFilter) (*PortfolioSummaryResponse, error) {
	key := filter.cacheKey("summary")
	var cached PortfolioSummaryResponse
	if s.readCache(ctx, key, &cached) {
		return &cached, nil
	}

	summary, err := s.reportRepo.GetPortfolioSummary(ctx, filter.toDomain())
	if err != nil {
		return nil, err
	}

	response := &PortfolioSummaryResponse{
		AsOf:             summary.AsOf,
		ActiveAssets:     summary.ActiveAssets,
		LiquidatedAssets: summary.LiquidatedAssets,
		SoldAssets:       summary.SoldAssets,
		TotalUPB:         toFloat64(summary.TotalUPB),
		AvgUPB:           toFloat64(summary.AvgUPB),
		TotalAsIsValue:   toFloat64(summary.TotalAsIsValue),
		WeightedRate:     toFloat64(summary.WeightedRate),
	}
	s.writeCache(ctx, key, response)
	return response, nil
}

// GetTradePipeline returns one row per trade with population rollups
func (s *ReportService) GetTradePipeline(ctx context.Context, filter PortfolioReportFilter) ([]TradePipelineRowResponse, error) {
	key := filter.cacheKey("pipeline")
	var cached []TradePipelineRowResponse
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.reportRepo.GetTradePipeline(ctx, filter.toDomain())
	if err != nil {
		return nil, err
	}

	responses := make([]TradePipelineRowResponse, len(rows))
	for i, r := range rows {
		responses[i] = TradePipelineRowResponse{
			TradeID:        r.TradeID.String(),
			TradeNumber:    r.TradeNumber,
			SellerName:     r.SellerName,
			Status:         r.Status,
			LoanCount:      r.LoanCount,
			TotalUPB:       toFloat64(r.TotalUPB),
			BidAmount:      toFloat64(r.BidAmount),
			BidPctOfUPB:    toFloat64(r.BidPctOfUPB),
			SettlementDate: r.SettlementDate,
		}
	}
	s.writeCache(ctx, key, responses)
	return responses, nil
}

// GetDelinquencyDistribution returns bucket counts for a servicing period
func (s *ReportService) GetDelinquencyDistribution(ctx context.Context, filter PortfolioReportFilter) (*DelinquencyDistributionResponse, error) {
	key := filter.cacheKey("delinquency")
	var cached DelinquencyDistributionResponse
	if s.readCache(ctx, key, &cached) {
		return &cached, nil
	}

	dist, err := s.reportRepo.GetDelinquencyDistribution(ctx, filter.toDomain())
	if err != nil {
		return nil, err
	}

	response := &DelinquencyDistributionResponse{
		Period: dist.Period,
		Bands:  make([]DelinquencyBandResponse, len(dist.Bands)),
	}
	for i, b := range dist.Bands {
		response.Bands[i] = DelinquencyBandResponse{
			Bucket:    b.Bucket,
			LoanCount: b.LoanCount,
			TotalUPB:  toFloat64(b.TotalUPB),
			PctOfUPB:  toFloat64(b.PctOfUPB),
		}
	}
	s.writeCache(ctx, key, response)
	return response, nil
}

// GetTrackSummary returns workout track counts grouped by type and status
func (s *ReportService) GetTrackSummary(ctx context.Context, filter PortfolioReportFilter) ([]TrackSummaryRowResponse, error) {
	key := filter.cacheKey("tracks")
	var cached []TrackSummaryRowResponse
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.reportRepo.GetTrackSummary(ctx, filter.toDomain())
	if err != nil {
		return nil, err
	}

	responses := make([]TrackSummaryRowResponse, len(rows))
	for i, r := range rows {
		responses[i] = TrackSummaryRowResponse{
			TrackType: r.TrackType,
			Status:    r.Status,
			Count:     r.Count,
		}
	}
	s.writeCache(ctx, key, responses)
	return responses, nil
}

// GetValuationCoverage returns per-source coverage and staleness counts
func (s *ReportService) GetValuationCoverage(ctx context.Context, filter PortfolioReportFilter) ([]ValuationCoverageRowResponse, error) {
	key := filter.cacheKey("valuation_coverage")
	var cached []ValuationCoverageRowResponse
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.reportRepo.GetValuationCoverage(ctx, filter.toDomain())
	if err != nil {
		return nil, err
	}

	responses := make([]ValuationCoverageRowResponse, len(rows))
	for i, r := range rows {
		responses[i] = ValuationCoverageRowResponse{
			Source:     r.Source,
			AssetCount: r.AssetCount,
			StaleCount: r.StaleCount,
		}
	}
	s.writeCache(ctx, key, responses)
	return responses, nil
}

// Refresh drops every cached report view and recomputes the unfiltered
// ones. Called by the nightly scheduler and after large imports.
func (s *ReportService) Refresh(ctx context.Context) error {
	if s.cache != nil {
		if err := s.cache.DeletePrefix(ctx, reportCacheKeyPrefix); err != nil {
			s.logger.Warn("failed to invalidate report cache", zap.Error(err))
		}
	}

	unfiltered := PortfolioReportFilter{}
	if _, err := s.GetPortfolioSummary(ctx, unfiltered); err != nil {
		return err
	}
	if _, err := s.GetTradePipeline(ctx, unfiltered); err != nil {
		return err
	}
	if _, err := s.GetTrackSummary(ctx, unfiltered); err != nil {
		return err
	}
	if _, err := s.GetValuationCoverage(ctx, unfiltered); err != nil {
		return err
	}
	return nil
}

// readCache loads a cached payload into out and reports whether it hit.
// Cache failures degrade to a repository read.
func (s *ReportService) readCache(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	payload, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		s.logger.Warn("report cache entry unreadable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *ReportService) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.config.CacheTTL); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
