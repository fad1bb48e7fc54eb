package event

import (
	"context"

	"github.com/npl/backend/internal/domain/am"
	"github.com/npl/backend/internal/domain/asset"
	"github.com/npl/backend/internal/domain/etl"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/domain/trade"
	"github.com/npl/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// MetricsHandler feeds portfolio counters from domain events. It is
// subscribed directly, without an idempotency wrapper; a redelivered
// event only skews an approximate counter.
type MetricsHandler struct {
	metrics *telemetry.PortfolioMetrics
	logger  *zap.Logger
}

// NewMetricsHandler creates a new MetricsHandler
func NewMetricsHandler(metrics *telemetry.PortfolioMetrics, logger *zap.Logger) *MetricsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsHandler{
		metrics: metrics,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		trade.EventTypeTradeSettled,
		asset.EventTypeAssetBoarded,
		am.EventTypeTrackOpened,
		am.EventTypeTrackResolved,
		etl.EventTypeJobCompleted,
	}
}

// Handle increments the counter matching the event. It never returns
// an error; a miscounted metric must not fail event dispatch.
func (h *MetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.TradeSettledEvent:
		h.metrics.RecordTradeSettled(ctx, e.PurchasePrice)
	case *asset.AssetBoardedEvent:
		h.metrics.RecordAssetBoarded(ctx)
	case *am.TrackOpenedEvent:
		h.metrics.RecordTrackOpened(ctx, string(e.TrackType))
	case *am.TrackResolvedEvent:
		h.metrics.RecordTrackResolved(ctx, string(e.TrackType), string(e.Outcome))
	case *etl.JobCompletedEvent:
		h.metrics.RecordExtractionJob(ctx, telemetry.ExtractionOutcomeCompleted)
	default:
		h.logger.Debug("no metric mapped for event type",
			zap.String("event_type", event.EventType()))
	}
	return nil
}

// Ensure MetricsHandler implements shared.EventHandler
var _ shared.EventHandler = (*MetricsHandler)(nil)
