package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/npl/backend/internal/infrastructure/logger"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "npl-backend",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, provider.IsEnabled())
	assert.Nil(t, provider.GetLoggerProvider())
	assert.NoError(t, provider.Shutdown(ctx))
	assert.NoError(t, provider.ForceFlush(ctx))
}

func TestLoggerProvider_GetConfig(t *testing.T) {
	cfg := LogsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "npl-backend",
		Insecure:          true,
	}

	provider, err := NewLoggerProvider(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, cfg, provider.GetConfig())
}

// The exporter buffers until a collector is reachable, so creation
// succeeds without one running
func TestNewLoggerProvider_NoCollector(t *testing.T) {
	ctx := context.Background()

	provider, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:19999",
		ServiceName:       "npl-backend",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)

	assert.True(t, provider.IsEnabled())
	assert.NotNil(t, provider.GetLoggerProvider())

	assert.NoError(t, provider.Shutdown(ctx))
	// Repeated shutdown stays safe
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestNewZapOTELCore_DisabledIsNop(t *testing.T) {
	// Nil provider
	core := NewZapOTELCore(ZapBridgeConfig{ServiceName: "npl-backend", Level: zapcore.InfoLevel})
	assert.False(t, core.Enabled(zapcore.InfoLevel))

	// Disabled provider
	provider, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	core = NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "npl-backend",
		LoggerProvider: provider,
		Level:          zapcore.InfoLevel,
	})
	assert.False(t, core.Enabled(zapcore.InfoLevel))
}

func TestNewZapOTELCore_LevelFilter(t *testing.T) {
	ctx := context.Background()
	provider, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:19999",
		ServiceName:       "npl-backend",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = provider.Shutdown(ctx) }()

	// Debug level passes the core through unwrapped
	core := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "npl-backend",
		LoggerProvider: provider,
		Level:          zapcore.DebugLevel,
	})
	assert.True(t, core.Enabled(zapcore.DebugLevel))

	// Anything stricter wraps with the filter
	core = NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "npl-backend",
		LoggerProvider: provider,
		Level:          zapcore.WarnLevel,
	})
	_, filtered := core.(*levelFilterCore)
	require.True(t, filtered)
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.WarnLevel))
}

func TestLevelFilterCore(t *testing.T) {
	observed, recorded := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: observed, minLevel: zapcore.WarnLevel}

	log := zap.New(filtered)
	log.Debug("dropped")
	log.Info("dropped")
	log.Warn("kept")
	log.Error("kept")

	logs := recorded.All()
	require.Len(t, logs, 2)
	assert.Equal(t, "kept", logs[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, logs[1].Level)
}

func TestLevelFilterCore_With(t *testing.T) {
	observed, recorded := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: observed, minLevel: zapcore.WarnLevel}

	child := filtered.With([]zapcore.Field{zap.String("service", "npl-backend")})
	childFiltered, ok := child.(*levelFilterCore)
	require.True(t, ok)
	assert.Equal(t, zapcore.WarnLevel, childFiltered.minLevel)

	zap.New(child).Warn("tagged")

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "npl-backend", logs[0].ContextMap()["service"])
}

func TestNewBridgedLogger(t *testing.T) {
	observed, recorded := observer.New(zapcore.InfoLevel)

	log := NewBridgedLogger(observed, zapcore.NewNopCore(), zap.AddCaller())
	log.Info("asset boarded", zap.String("hub_id", "H-1"))
	log.Debug("below level")
	log.Warn("servicer lag")

	logs := recorded.All()
	require.Len(t, logs, 2)
	assert.Equal(t, "asset boarded", logs[0].Message)
	assert.Equal(t, "H-1", logs[0].ContextMap()["hub_id"])
	assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
}

func TestCreateBridgedLoggerFromConfig(t *testing.T) {
	provider, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	log, err := CreateBridgedLoggerFromConfig(&logger.Config{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, provider, "npl-backend")
	require.NoError(t, err)
	require.NotNil(t, log)

	// OTEL side is nop; local side still works
	log.Info("bridged", zap.String("hub_id", "H-1"))
	_ = log.Sync()
}
