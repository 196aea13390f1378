package telemetry

import (
	"context"
	"errors"
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
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

func setupTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, recorder
}

func attrMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestNewDBTracingPlugin_Defaults(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())

	assert.Equal(t, 200*time.Millisecond, p.config.SlowQueryThresh)
	assert.Equal(t, "postgresql", p.config.DBName)
	assert.False(t, p.config.LogFullSQL)
}

func TestDBTracingPlugin_Initialize(t *testing.T) {
	t.Run("disabled registers nothing", func(t *testing.T) {
		db := setupTestDB(t)

		require.NoError(t, db.Use(NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())))

		assert.Nil(t, db.Callback().Create().Get("db_tracing:after_create"))
	})

	t.Run("enabled registers timing callbacks", func(t *testing.T) {
		db := setupTestDB(t)
		cfg := DefaultDBTracingConfig()
		cfg.Enabled = true
		cfg.DBName = "sqlite"

		require.NoError(t, db.Use(NewDBTracingPlugin(cfg, zap.NewNop())))

		assert.NotNil(t, db.Callback().Create().Get("db_tracing:before_create"))
		assert.NotNil(t, db.Callback().Query().Get("db_tracing:after_query"))
		assert.NotNil(t, db.Callback().Raw().Get("db_tracing:after_raw"))
	})

	t.Run("second registration is rejected", func(t *testing.T) {
		db := setupTestDB(t)
		cfg := DefaultDBTracingConfig()
		cfg.Enabled = true

		require.NoError(t, db.Use(NewDBTracingPlugin(cfg, zap.NewNop())))
		err := db.Use(NewDBTracingPlugin(cfg, zap.NewNop()))
		assert.ErrorIs(t, err, gorm.ErrRegistered)
	})
}

func TestDBTracingPlugin_AnnotateSpan(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Millisecond}, zap.NewNop())

	t.Run("adds table, rows and slow query marker", func(t *testing.T) {
		tp, recorder := setupTracer(t)
		ctx, span := tp.Tracer("test").Start(context.Background(), "db")
		ctx = context.WithValue(ctx, queryStartTimeKey, time.Now().Add(-time.Second))

		tx := setupTestDB(t).WithContext(ctx)
		tx.Statement.Table = "cash_flows"
		tx.Statement.RowsAffected = 2
		p.annotateSpan(tx)
		span.End()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		attrs := attrMap(spans[0])
		assert.Equal(t, "cash_flows", attrs["db.sql.table"].AsString())
		assert.Equal(t, int64(2), attrs["db.rows_affected"].AsInt64())
		assert.True(t, attrs["db.slow_query"].AsBool())
		require.Len(t, spans[0].Events(), 1)
		assert.Equal(t, "slow_query_warning", spans[0].Events()[0].Name)
	})

	t.Run("marks errors but not record-not-found", func(t *testing.T) {
		tp, recorder := setupTracer(t)

		ctx, span := tp.Tracer("test").Start(context.Background(), "missing")
		tx := setupTestDB(t).WithContext(ctx)
		tx.Error = gorm.ErrRecordNotFound
		p.annotateSpan(tx)
		span.End()

		ctx, span = tp.Tracer("test").Start(context.Background(), "failed")
		tx = setupTestDB(t).WithContext(ctx)
		tx.Error = errors.New("relation does not exist")
		p.annotateSpan(tx)
		span.End()

		spans := recorder.Ended()
		require.Len(t, spans, 2)
		assert.NotEqual(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, codes.Error, spans[1].Status().Code)
	})

	t.Run("fast query is not marked slow", func(t *testing.T) {
		tp, recorder := setupTracer(t)
		slowOnly := NewDBTracingPlugin(DBTracingConfig{SlowQueryThresh: time.Hour}, zap.NewNop())

		ctx, span := tp.Tracer("test").Start(context.Background(), "db")
		ctx = context.WithValue(ctx, queryStartTimeKey, time.Now())
		slowOnly.annotateSpan(setupTestDB(t).WithContext(ctx))
		span.End()

		_, found := attrMap(recorder.Ended()[0])["db.slow_query"]
		assert.False(t, found)
	})

	t.Run("ignores non-recording spans", func(t *testing.T) {
		assert.NotPanics(t, func() {
			p.annotateSpan(setupTestDB(t).WithContext(context.Background()))
		})
	})
}
