package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ledgerRow struct {
	ID        uint   `gorm:"primaryKey"`
	Reference string `gorm:"size:64"`
	CreatedAt time.Time
}

func openTracedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ledgerRow{}))
	return db
}

func newSpanRecorder() (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)), recorder
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
	assert.True(t, cfg.WithoutVariables, "bind values stay out of spans unless opted in")
}

func TestRegisterOtelGorm(t *testing.T) {
	t.Run("disabled config registers nothing", func(t *testing.T) {
		db := openTracedDB(t)
		plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())

		require.NoError(t, plugin.RegisterOtelGorm(db))
	})

	t.Run("enabled config registers the plugin and callbacks", func(t *testing.T) {
		db := openTracedDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{
			Enabled:          true,
			SlowQueryThresh:  200 * time.Millisecond,
			DBSystem:         "sqlite",
			WithoutVariables: true,
		}, zap.NewNop())

		require.NoError(t, plugin.RegisterOtelGorm(db))
	})

	t.Run("second registration fails on duplicate callback names", func(t *testing.T) {
		db := openTracedDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: 200 * time.Millisecond,
			DBSystem:        "sqlite",
		}, zap.NewNop())

		require.NoError(t, plugin.RegisterOtelGorm(db))
		assert.Error(t, plugin.RegisterOtelGorm(db))
	})
}

func TestAnnotateSpan(t *testing.T) {
	newPlugin := func(thresh time.Duration) *DBTracingPlugin {
		return NewDBTracingPlugin(DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: thresh,
			DBSystem:        "sqlite",
		}, zap.NewNop())
	}

	t.Run("records row count and table name", func(t *testing.T) {
		db := openTracedDB(t)
		tp, recorder := newSpanRecorder()
		defer func() { _ = tp.Shutdown(context.Background()) }()

		ctx, span := tp.Tracer("test").Start(context.Background(), "save-statement-lines")
		rows := []ledgerRow{{Reference: "TRN-1"}, {Reference: "TRN-2"}, {Reference: "TRN-3"}}
		result := db.WithContext(ctx).Create(&rows)
		require.NoError(t, result.Error)

		newPlugin(200 * time.Millisecond).annotateSpan(result.Statement.DB)
		span.End()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		attrs := spans[0].Attributes()
		assert.Contains(t, attrs, attribute.Int64("db.rows_affected", 3))
		assert.Contains(t, attrs, attribute.String("db.sql.table", "ledger_rows"))
	})

	t.Run("record not found is not a span error", func(t *testing.T) {
		db := openTracedDB(t)
		tp, recorder := newSpanRecorder()
		defer func() { _ = tp.Shutdown(context.Background()) }()

		ctx, span := tp.Tracer("test").Start(context.Background(), "load-transaction")
		var row ledgerRow
		tx := db.WithContext(ctx).First(&row, 404)
		require.Error(t, tx.Error)

		newPlugin(200 * time.Millisecond).annotateSpan(tx)
		span.End()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("flags queries over the threshold", func(t *testing.T) {
		db := openTracedDB(t)
		tp, recorder := newSpanRecorder()
		defer func() { _ = tp.Shutdown(context.Background()) }()

		ctx, span := tp.Tracer("test").Start(context.Background(), "slow-scan")
		ctx = context.WithValue(ctx, queryStartKey, time.Now().Add(-time.Second))

		var rows []ledgerRow
		tx := db.WithContext(ctx).Find(&rows)
		require.NoError(t, tx.Error)

		newPlugin(time.Millisecond).annotateSpan(tx)
		span.End()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Contains(t, spans[0].Attributes(), attribute.Bool("db.slow_query", true))

		var slowEvent bool
		for _, event := range spans[0].Events() {
			if event.Name == "slow_query" {
				slowEvent = true
			}
		}
		assert.True(t, slowEvent, "slow queries add a span event")
	})

	t.Run("safe without a recording span", func(t *testing.T) {
		db := openTracedDB(t)
		tx := db.WithContext(context.Background()).Find(&[]ledgerRow{})

		newPlugin(200 * time.Millisecond).annotateSpan(tx)
	})
}
