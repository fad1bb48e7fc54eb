package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/npl/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestNewPortfolioMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	pm, err := telemetry.NewPortfolioMetrics(telemetry.PortfolioMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, pm)
}

func TestNewPortfolioMetrics_NilMeter(t *testing.T) {
	pm, err := telemetry.NewPortfolioMetrics(telemetry.PortfolioMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, pm)
	assert.Equal(t, "NewPortfolioMetrics: meter cannot be nil", err.Error())
}

func TestPortfolioMetrics_RecordCounters(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	pm, err := telemetry.NewPortfolioMetrics(telemetry.PortfolioMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	pm.RecordTradeSettled(ctx, decimal.NewFromFloat(2150000.50))
	pm.RecordAssetBoarded(ctx)
	pm.RecordTrackOpened(ctx, "REO")
	pm.RecordTrackResolved(ctx, "FORECLOSURE", "LIQUIDATED")
	pm.RecordExtractionJob(ctx, telemetry.ExtractionOutcomeCompleted)
	pm.RecordExtractionJob(ctx, telemetry.ExtractionOutcomeFailed)
}

func TestPortfolioMetrics_RecordGauges(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	pm, err := telemetry.NewPortfolioMetrics(telemetry.PortfolioMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	pm.RecordActiveBook(ctx, 450, 38750000.00)
	pm.RecordOpenTrackCount(ctx, "REO", 12)
	pm.RecordOpenTrackCount(ctx, "MODIFICATION", 3)
}

// mockPortfolioProvider implements PortfolioMetricsProvider for testing
type mockPortfolioProvider struct {
	count      int64
	totalUPB   float64
	openTracks map[string]int64
	err        error
}

func (m *mockPortfolioProvider) ActiveBook(ctx context.Context) (int64, float64, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	return m.count, m.totalUPB, nil
}

func (m *mockPortfolioProvider) OpenTrackCounts(ctx context.Context) (map[string]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.openTracks, nil
}

func TestPortfolioMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	provider := &mockPortfolioProvider{
		count:    120,
		totalUPB: 9850000.00,
		openTracks: map[string]int64{
			"REO":         8,
			"FORECLOSURE": 15,
		},
	}

	pm, err := telemetry.NewPortfolioMetrics(telemetry.PortfolioMetricsConfig{
		Meter:    meter,
		Logger:   zap.NewNop(),
		Provider: provider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start periodic collection with short interval for testing
	pm.StartPeriodicCollection(ctx, 100*time.Millisecond)

	// Wait for at least one collection cycle
	time.Sleep(150 * time.Millisecond)

	pm.Stop()

	// Should complete without error
}

func TestPortfolioMetrics_PeriodicCollection_NoProvider(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	pm, err := telemetry.NewPortfolioMetrics(telemetry.PortfolioMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
		// No portfolio provider
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Should not panic with no provider
	pm.StartPeriodicCollection(ctx, 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	pm.Stop()
}

func TestPortfolioMetrics_Stop_Idempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	pm, err := telemetry.NewPortfolioMetrics(telemetry.PortfolioMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	// Calling Stop multiple times should not panic
	pm.Stop()
	pm.Stop()
	pm.Stop()
}

func TestPortfolioMetrics_StartPeriodicCollection_OnlyOnce(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	pm, err := telemetry.NewPortfolioMetrics(telemetry.PortfolioMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Calling StartPeriodicCollection multiple times should only start once
	pm.StartPeriodicCollection(ctx, time.Hour)
	pm.StartPeriodicCollection(ctx, time.Minute)
	pm.StartPeriodicCollection(ctx, time.Second)

	pm.Stop()
}

func TestExtractionOutcome_Values(t *testing.T) {
	assert.Equal(t, telemetry.ExtractionOutcome("completed"), telemetry.ExtractionOutcomeCompleted)
	assert.Equal(t, telemetry.ExtractionOutcome("failed"), telemetry.ExtractionOutcomeFailed)
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{
		Op:  "TestOperation",
		Err: "test error message",
	}

	assert.Equal(t, "TestOperation: test error message", err.Error())
}
