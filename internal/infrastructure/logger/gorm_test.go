package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func selectQuery() (string, int64) {
	return "SELECT * FROM assets WHERE status = 'ACTIVE'", 42
}

func TestNewGormLogger_Defaults(t *testing.T) {
	gl, _ := observedGormLogger(gormlogger.Info)

	assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
	assert.True(t, gl.skipNotFoundError)
}

func TestNewGormLogger_Options(t *testing.T) {
	gl, _ := observedGormLogger(gormlogger.Warn,
		WithSlowThreshold(500*time.Millisecond),
		WithSkipNotFoundError(false),
	)

	assert.Equal(t, 500*time.Millisecond, gl.slowThreshold)
	assert.False(t, gl.skipNotFoundError)
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := observedGormLogger(gormlogger.Info)

	clone, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, clone.logLevel)
	// Original is untouched
	assert.Equal(t, gormlogger.Info, gl.logLevel)
}

func TestGormLogger_LevelGating(t *testing.T) {
	ctx := context.Background()

	gl, recorded := observedGormLogger(gormlogger.Info)
	gl.Info(ctx, "migrating %s", "am_tracks")
	gl.Warn(ctx, "pool saturated")
	gl.Error(ctx, "connect failed")
	assert.Len(t, recorded.All(), 3)

	silent, suppressed := observedGormLogger(gormlogger.Silent)
	silent.Info(ctx, "never shown")
	silent.Error(ctx, "never shown")
	assert.Empty(t, suppressed.All())
}

func TestGormLogger_Trace_Error(t *testing.T) {
	gl, recorded := observedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), selectQuery, assert.AnError)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "SQL Error", logs[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
}

func TestGormLogger_Trace_NotFoundSkipped(t *testing.T) {
	gl, recorded := observedGormLogger(gormlogger.Error, WithSkipNotFoundError(true))

	gl.Trace(context.Background(), time.Now(), selectQuery, gormlogger.ErrRecordNotFound)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_Trace_NotFoundLogged(t *testing.T) {
	gl, recorded := observedGormLogger(gormlogger.Error, WithSkipNotFoundError(false))

	gl.Trace(context.Background(), time.Now(), selectQuery, gormlogger.ErrRecordNotFound)

	require.Len(t, recorded.All(), 1)
}

func TestGormLogger_Trace_SlowQuery(t *testing.T) {
	gl, recorded := observedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Nanosecond))

	gl.Trace(context.Background(), time.Now().Add(-time.Second), selectQuery, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "Slow SQL", logs[0].Message)
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
}

func TestGormLogger_Trace_Query(t *testing.T) {
	gl, recorded := observedGormLogger(gormlogger.Info)

	gl.Trace(context.Background(), time.Now(), selectQuery, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "SQL Query", logs[0].Message)

	fields := logs[0].ContextMap()
	assert.Contains(t, fields, "elapsed")
	assert.Equal(t, int64(42), fields["rows"])
	assert.Contains(t, fields["sql"], "FROM assets")
}

func TestGormLogger_Trace_Silent(t *testing.T) {
	gl, recorded := observedGormLogger(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), selectQuery, assert.AnError)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_Trace_TraceCorrelation(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "list-assets")
	defer span.End()

	gl, recorded := observedGormLogger(gormlogger.Info)
	gl.Trace(ctx, time.Now(), selectQuery, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	fields := logs[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"bogus", gormlogger.Warn},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, MapGormLogLevel(tt.level), tt.level)
	}
}

func TestGormLoggerImplementsInterface(t *testing.T) {
	gl, _ := observedGormLogger(gormlogger.Info)
	var _ gormlogger.Interface = gl
}
