package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *recordingExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *recordingExporter) Shutdown(context.Context) error   { return nil }
func (e *recordingExporter) ForceFlush(context.Context) error { return nil }

func (e *recordingExporter) bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.records))
	for _, r := range e.records {
		out = append(out, r.Body().AsString())
	}
	return out
}

func newRecordingProvider(t *testing.T) (*LoggerProvider, *recordingExporter) {
	t.Helper()
	exp := &recordingExporter{}
	lp := &LoggerProvider{
		provider: sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp))),
		logger:   zap.NewNop(),
		config:   LogsConfig{Enabled: true, ServiceName: "shopdesk-test"},
	}
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })
	return lp, exp
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	lp, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "shopdesk-test",
	}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.ForceFlush(ctx))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestNewZapOTELCore(t *testing.T) {
	t.Run("nil provider yields nop core", func(t *testing.T) {
		core := NewZapOTELCore(ZapBridgeConfig{ServiceName: "shopdesk-test"})
		assert.False(t, core.Enabled(zapcore.ErrorLevel))
	})

	t.Run("level filter drops entries below minimum", func(t *testing.T) {
		lp, _ := newRecordingProvider(t)
		core := NewZapOTELCore(ZapBridgeConfig{
			ServiceName:    "shopdesk-test",
			LoggerProvider: lp,
			Level:          zapcore.WarnLevel,
		})

		_, filtered := core.(*levelFilterCore)
		assert.True(t, filtered)
		assert.False(t, core.Enabled(zapcore.InfoLevel))
		assert.True(t, core.Enabled(zapcore.WarnLevel))
		assert.False(t, core.With([]zapcore.Field{zap.String("k", "v")}).Enabled(zapcore.InfoLevel))
	})
}

func TestNewBridgedLogger(t *testing.T) {
	observed, logs := observer.New(zapcore.InfoLevel)
	lp, exp := newRecordingProvider(t)
	otelCore := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "shopdesk-test",
		LoggerProvider: lp,
		Level:          zapcore.InfoLevel,
	})

	log := NewBridgedLogger(observed, otelCore)
	log.Debug("dropped everywhere")
	log.Info("expense recorded", zap.Int64("expense_id", 7))
	log.Warn("snapshot degraded")

	require.Len(t, logs.All(), 2)
	assert.Equal(t, "expense recorded", logs.All()[0].Message)
	assert.Equal(t, []string{"expense recorded", "snapshot degraded"}, exp.bodies())

	exp.mu.Lock()
	defer exp.mu.Unlock()
	assert.Equal(t, otellog.SeverityWarn, exp.records[1].Severity())
}

func TestBridgeLogger(t *testing.T) {
	t.Run("disabled export returns base logger", func(t *testing.T) {
		base := zap.NewNop()
		disabled := &LoggerProvider{logger: zap.NewNop()}
		assert.Same(t, base, BridgeLogger(base, disabled, "shopdesk-test"))
		assert.Same(t, base, BridgeLogger(base, nil, "shopdesk-test"))
	})

	t.Run("enabled export tees at base level", func(t *testing.T) {
		observed, logs := observer.New(zapcore.WarnLevel)
		lp, exp := newRecordingProvider(t)

		log := BridgeLogger(zap.New(observed), lp, "shopdesk-test")
		log.Info("below base level")
		log.Error("transaction failed")

		assert.Len(t, logs.All(), 1)
		assert.Equal(t, []string{"transaction failed"}, exp.bodies())
	})
}
