package event

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/am"
	"github.com/npl/backend/internal/domain/asset"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/domain/trade"
	"github.com/npl/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func newTestPortfolioMetrics(t *testing.T) *telemetry.PortfolioMetrics {
	t.Helper()
	pm, err := telemetry.NewPortfolioMetrics(telemetry.PortfolioMetricsConfig{
		Meter:  noop.NewMeterProvider().Meter("test"),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	return pm
}

func TestMetricsHandler_EventTypes(t *testing.T) {
	h := NewMetricsHandler(newTestPortfolioMetrics(t), zap.NewNop())

	types := h.EventTypes()
	assert.Contains(t, types, trade.EventTypeTradeSettled)
	assert.Contains(t, types, asset.EventTypeAssetBoarded)
	assert.Contains(t, types, am.EventTypeTrackOpened)
	assert.Contains(t, types, am.EventTypeTrackResolved)
}

func TestMetricsHandler_Handle(t *testing.T) {
	h := NewMetricsHandler(newTestPortfolioMetrics(t), zap.NewNop())
	ctx := context.Background()

	settled := &trade.TradeSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeTradeSettled, trade.AggregateTypeTrade, uuid.New()),
		TradeID:         uuid.New(),
		TradeNumber:     "TRD-2026-0001",
		PurchasePrice:   decimal.NewFromInt(2500000),
	}
	assert.NoError(t, h.Handle(ctx, settled))

	resolved := &am.TrackResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(am.EventTypeTrackResolved, am.AggregateTypeAMTrack, uuid.New()),
		TrackID:         uuid.New(),
		HubID:           uuid.New(),
		TrackType:       am.TrackTypeREO,
		Outcome:         am.OutcomeLiquidated,
	}
	assert.NoError(t, h.Handle(ctx, resolved))
}

func TestMetricsHandler_Handle_UnmappedEvent(t *testing.T) {
	h := NewMetricsHandler(newTestPortfolioMetrics(t), zap.NewNop())

	// An unmapped event is ignored, never an error
	bid := &trade.TradeBidSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(trade.EventTypeTradeBidSubmitted, trade.AggregateTypeTrade, uuid.New()),
	}
	assert.NoError(t, h.Handle(context.Background(), bid))
}
