package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// PortfolioMetrics provides business metrics for the NPL platform.
// Counters track trade settlement, asset boarding, workout-track and
// extraction activity; gauges track the current state of the book.
type PortfolioMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	tradeSettledTotal   *Counter
	purchaseAmountTotal *Counter
	assetBoardedTotal   *Counter
	trackOpenedTotal    *Counter
	trackResolvedTotal  *Counter
	extractionJobTotal  *Counter

	// Gauge metrics (point-in-time values)
	activeAssetCount *Gauge
	activeUPBTotal   *FloatGauge
	openTrackCount   *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	provider PortfolioMetricsProvider
}

// PortfolioMetricsProvider provides portfolio state for periodic
// metrics collection. The interface keeps the telemetry layer off the
// asset and AM domains; implementations query the tables directly.
type PortfolioMetricsProvider interface {
	// ActiveBook returns the count and total UPB of assets still on the book
	ActiveBook(ctx context.Context) (count int64, totalUPB float64, err error)

	// OpenTrackCounts returns the number of unresolved tracks per track type
	OpenTrackCounts(ctx context.Context) (map[string]int64, error)
}

// PortfolioMetricsConfig holds configuration for portfolio metrics.
type PortfolioMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	Provider        PortfolioMetricsProvider
}

// NewPortfolioMetrics creates a new PortfolioMetrics instance.
func NewPortfolioMetrics(cfg PortfolioMetricsConfig) (*PortfolioMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &PortfolioMetrics{
		meter:    cfg.Meter,
		logger:   logger,
		stopChan: make(chan struct{}),
		provider: cfg.Provider,
	}

	var err error

	// Trade metrics
	pm.tradeSettledTotal, err = NewCounter(
		cfg.Meter,
		"npl_trade_settled_total",
		"Total number of trades settled",
		"{trades}",
	)
	if err != nil {
		return nil, err
	}

	pm.purchaseAmountTotal, err = NewCounter(
		cfg.Meter,
		"npl_trade_purchase_amount_total",
		"Total settled purchase price in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	// Asset metrics
	pm.assetBoardedTotal, err = NewCounter(
		cfg.Meter,
		"npl_asset_boarded_total",
		"Total number of assets boarded at settlement",
		"{assets}",
	)
	if err != nil {
		return nil, err
	}

	// Workout-track metrics
	pm.trackOpenedTotal, err = NewCounter(
		cfg.Meter,
		"npl_track_opened_total",
		"Total number of workout tracks opened",
		"{tracks}",
	)
	if err != nil {
		return nil, err
	}

	pm.trackResolvedTotal, err = NewCounter(
		cfg.Meter,
		"npl_track_resolved_total",
		"Total number of workout tracks resolved",
		"{tracks}",
	)
	if err != nil {
		return nil, err
	}

	// Extraction metrics
	pm.extractionJobTotal, err = NewCounter(
		cfg.Meter,
		"npl_extraction_job_total",
		"Total number of document extraction jobs by outcome",
		"{jobs}",
	)
	if err != nil {
		return nil, err
	}

	// Portfolio gauge metrics
	pm.activeAssetCount, err = NewGauge(
		cfg.Meter,
		"npl_asset_active_count",
		"Number of assets currently on the book",
		"{assets}",
	)
	if err != nil {
		return nil, err
	}

	pm.activeUPBTotal, err = NewFloatGauge(
		cfg.Meter,
		"npl_asset_active_upb_total",
		"Total unpaid principal balance of active assets",
		"{usd}",
	)
	if err != nil {
		return nil, err
	}

	pm.openTrackCount, err = NewGauge(
		cfg.Meter,
		"npl_track_open_count",
		"Number of unresolved workout tracks",
		"{tracks}",
	)
	if err != nil {
		return nil, err
	}

	return pm, nil
}

// =============================================================================
// Trade Metrics
// =============================================================================

// RecordTradeSettled records a trade settlement and its purchase price.
// The price is counted in the smallest currency unit (cents).
func (pm *PortfolioMetrics) RecordTradeSettled(ctx context.Context, purchasePrice decimal.Decimal) {
	pm.tradeSettledTotal.Inc(ctx)

	cents := purchasePrice.Mul(decimal.NewFromInt(100)).IntPart()
	pm.purchaseAmountTotal.Add(ctx, cents)
}

// =============================================================================
// Asset Metrics
// =============================================================================

// RecordAssetBoarded records one asset landing on the book.
func (pm *PortfolioMetrics) RecordAssetBoarded(ctx context.Context) {
	pm.assetBoardedTotal.Inc(ctx)
}

// =============================================================================
// Workout-Track Metrics
// =============================================================================

// RecordTrackOpened records a workout track being opened.
func (pm *PortfolioMetrics) RecordTrackOpened(ctx context.Context, trackType string) {
	pm.trackOpenedTotal.Inc(ctx,
		AttrTrackType.String(trackType),
	)
}

// RecordTrackResolved records a workout track resolving with an outcome.
func (pm *PortfolioMetrics) RecordTrackResolved(ctx context.Context, trackType, outcome string) {
	pm.trackResolvedTotal.Inc(ctx,
		AttrTrackType.String(trackType),
		AttrTrackOutcome.String(outcome),
	)
}

// =============================================================================
// Extraction Metrics
// =============================================================================

// ExtractionOutcome labels an extraction job result for metrics.
type ExtractionOutcome string

const (
	ExtractionOutcomeCompleted ExtractionOutcome = "completed"
	ExtractionOutcomeFailed    ExtractionOutcome = "failed"
)

// RecordExtractionJob records an extraction job outcome.
func (pm *PortfolioMetrics) RecordExtractionJob(ctx context.Context, outcome ExtractionOutcome) {
	pm.extractionJobTotal.Inc(ctx,
		AttrJobStatus.String(string(outcome)),
	)
}

// =============================================================================
// Portfolio Gauges
// =============================================================================

// RecordActiveBook records the current size of the active book.
// This is a gauge pair that should be updated periodically.
func (pm *PortfolioMetrics) RecordActiveBook(ctx context.Context, count int64, totalUPB float64) {
	pm.activeAssetCount.Record(ctx, count)
	pm.activeUPBTotal.Record(ctx, totalUPB)
}

// RecordOpenTrackCount records the number of unresolved tracks of one type.
func (pm *PortfolioMetrics) RecordOpenTrackCount(ctx context.Context, trackType string, count int64) {
	pm.openTrackCount.Record(ctx, count,
		AttrTrackType.String(trackType),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects portfolio state every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (pm *PortfolioMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	pm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go pm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (pm *PortfolioMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	pm.collectPortfolioMetrics(ctx)

	for {
		select {
		case <-pm.stopChan:
			pm.logger.Info("Stopping periodic portfolio metrics collection")
			return
		case <-ctx.Done():
			pm.logger.Info("Context cancelled, stopping periodic portfolio metrics collection")
			return
		case <-ticker.C:
			pm.collectPortfolioMetrics(ctx)
		}
	}
}

// collectPortfolioMetrics collects the portfolio gauge metrics.
func (pm *PortfolioMetrics) collectPortfolioMetrics(ctx context.Context) {
	if pm.provider == nil {
		pm.logger.Debug("No portfolio provider configured, skipping gauge collection")
		return
	}

	count, totalUPB, err := pm.provider.ActiveBook(ctx)
	if err != nil {
		pm.logger.Warn("Failed to collect active book metrics", zap.Error(err))
	} else {
		pm.RecordActiveBook(ctx, count, totalUPB)
	}

	openByType, err := pm.provider.OpenTrackCounts(ctx)
	if err != nil {
		pm.logger.Warn("Failed to collect open track counts", zap.Error(err))
	} else {
		for trackType, n := range openByType {
			pm.RecordOpenTrackCount(ctx, trackType, n)
		}
	}
}

// Stop stops the periodic collection.
func (pm *PortfolioMetrics) Stop() {
	pm.stopOnce.Do(func() {
		close(pm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewPortfolioMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// =============================================================================
// Attribute Key Constants
// =============================================================================

// Portfolio metrics attribute keys not already defined in metrics.go
var (
	AttrTrackOutcome = attribute.Key("track_outcome")
)
