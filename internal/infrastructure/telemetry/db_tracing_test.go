package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type valuationRow struct {
	ID        uint   `gorm:"primaryKey"`
	HubID     int64  `gorm:"index"`
	Source    string `gorm:"size:50"`
	CreatedAt time.Time
}

func tracedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&valuationRow{}))
	return db
}

func spanRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, recorder
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL, "query parameters must stay out of spans by default")
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := tracedTestDB(t)

	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

	require.NoError(t, plugin.RegisterOtelGorm(db))
	// Registering twice stays a no-op while disabled
	require.NoError(t, plugin.RegisterOtelGorm(db))
}

func TestDBTracingPlugin_Enabled(t *testing.T) {
	db := tracedTestDB(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"

	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	// A second registration collides on plugin and callback names
	assert.Error(t, plugin.RegisterOtelGorm(db))
}

func TestDBTracingPlugin_FullSQLMode(t *testing.T) {
	db := tracedTestDB(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.LogFullSQL = true
	cfg.DBSystem = "sqlite"

	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	assert.NoError(t, plugin.RegisterOtelGorm(db))
}

func TestDBTracingPlugin_RecordsRowsAffected(t *testing.T) {
	db := tracedTestDB(t)
	tp, recorder := spanRecorder(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "board-assets")

	rows := []valuationRow{
		{HubID: 1001, Source: "BPO"},
		{HubID: 1002, Source: "BPO"},
		{HubID: 1003, Source: "AVM"},
	}
	require.NoError(t, db.WithContext(ctx).Create(&rows).Error)
	span.End()

	var foundRows bool
	for _, s := range recorder.Ended() {
		for _, attr := range s.Attributes() {
			if attr.Key == "db.rows_affected" && attr.Value.AsInt64() == 3 {
				foundRows = true
			}
		}
	}
	assert.True(t, foundRows, "db.rows_affected attribute missing")
}

func TestDBTracingPlugin_FlagsSlowQueries(t *testing.T) {
	db := tracedTestDB(t)
	tp, recorder := spanRecorder(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	cfg.SlowQueryThresh = time.Nanosecond
	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "list-valuations")

	var rows []valuationRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	span.End()

	var flagged, warned bool
	for _, s := range recorder.Ended() {
		for _, attr := range s.Attributes() {
			if attr.Key == "db.slow_query" && attr.Value.AsBool() {
				flagged = true
			}
		}
		for _, event := range s.Events() {
			if event.Name == "slow_query_warning" {
				warned = true
			}
		}
	}
	assert.True(t, flagged, "db.slow_query attribute missing")
	assert.True(t, warned, "slow_query_warning event missing")
}

func TestDBTracingPlugin_RecordNotFoundIsNotAnError(t *testing.T) {
	db := tracedTestDB(t)
	tp, recorder := spanRecorder(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).RegisterOtelGorm(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "lookup-missing-hub")

	var row valuationRow
	err := db.WithContext(ctx).First(&row, 99999).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	span.End()

	for _, s := range recorder.Ended() {
		assert.NotEqual(t, codes.Error, s.Status().Code,
			"missing row must not fail the span")
	}
}

func TestDBTracingPlugin_ObserveToleratesBareStatements(t *testing.T) {
	db := tracedTestDB(t)

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())

	// No span, no start time stamp: observe must not panic
	plugin.observe(db.Session(&gorm.Session{NewDB: true}))
	plugin.observe(db.WithContext(context.Background()))
}
