package observability

import (
	"context"
	"testing"

	"stackpot/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	cfg := config.NewTestConfig()
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))

	assert.NotPanics(t, func() {
		mp.RecordPotOperation("deposit", "ok")
		mp.RecordDraw(3)
		mp.RecordPoolGauges(1, 2, 3)
	})

	var nilProvider *MetricsProvider
	assert.NotPanics(t, func() { nilProvider.RecordEntropyRequest(true) })
}

func TestMetricsProvider_NoneExporterIsNoop(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "none"

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))
	assert.NotPanics(t, func() { mp.RecordPotOperation("deposit", "ok") })
}

func TestServiceResource_MergesWithSDKDefaults(t *testing.T) {
	res, err := serviceResource("stackpot-test", "test")
	require.NoError(t, err)
	assert.Equal(t, resource.Default().SchemaURL(), res.SchemaURL())

	name, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "stackpot-test", name.AsString())
}

func TestMetricsProvider_ConsoleExporterInitializes(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "console"

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	assert.NotPanics(t, func() { mp.RecordPotOperation("deposit", "ok") })
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "carrier-pigeon"

	assert.Error(t, NewMetricsProvider(cfg).Initialize(context.Background()))
}

func TestMetricsProvider_RecordsInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(config.NewTestConfig())
	require.NoError(t, mp.InitializeWithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	mp.RecordPotOperation("deposit", "ok")
	mp.RecordPotOperation("deposit", "ok")
	mp.RecordPotOperation("deposit", "invalid_amount")
	mp.RecordDraw(4)
	mp.RecordPoolGauges(150_000_000, 155_000_000, 2)

	metrics := collect(t, reader)

	ops, ok := metrics[PotOperationsTotal].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range ops.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(3), total)
	assert.Len(t, ops.DataPoints, 2)

	draws, ok := metrics[DrawsTotal].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, draws.DataPoints, 1)
	assert.Equal(t, int64(1), draws.DataPoints[0].Value)

	balance, ok := metrics[PotTotalBalance].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, balance.DataPoints, 1)
	assert.Equal(t, int64(150_000_000), balance.DataPoints[0].Value)
}

func TestClampInt64(t *testing.T) {
	assert.Equal(t, int64(5), clampInt64(5))
	assert.Equal(t, int64(9223372036854775807), clampInt64(^uint64(0)))
}
