package observability

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"stackpot/config"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// MetricsProvider manages OpenTelemetry metrics for the pot service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	mu            sync.RWMutex

	// Metric instruments
	potOperationsCounter         metric.Int64Counter
	totalBalanceGauge            metric.Int64Gauge
	stakedValueGauge             metric.Int64Gauge
	activeParticipantsGauge      metric.Int64Gauge
	drawsCounter                 metric.Int64Counter
	drawParticipantsHist         metric.Int64Histogram
	entropyRequestsCounter       metric.Int64Counter
	natsMessagesReceivedCounter  metric.Int64Counter
	natsMessagesPublishedCounter metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// serviceResource describes the service on top of the SDK defaults. The
// semconv import must match the schema version the SDK's defaults use.
func serviceResource(serviceName, environment string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			attribute.String("environment", environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Info("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	res, err := serviceResource(mp.config.OTelServiceName, mp.config.Environment)
	if err != nil {
		return err
	}

	var exporter sdkmetric.Exporter
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	interval := time.Duration(mp.config.OTelExportIntervalMillis) * time.Millisecond
	if interval <= 0 {
		interval = 30 * time.Second
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)

	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("stackpot")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// InitializeWithReader wires the provider to an explicit reader. Tests use a ManualReader.
func (mp *MetricsProvider) InitializeWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	mp.meter = mp.meterProvider.Meter("stackpot")
	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}
	mp.initialized = true
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.potOperationsCounter, err = mp.meter.Int64Counter(
		PotOperationsTotal,
		metric.WithDescription("Total number of pot write operations by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create pot operations counter: %w", err)
	}

	mp.totalBalanceGauge, err = mp.meter.Int64Gauge(
		PotTotalBalance,
		metric.WithDescription("Sum of participant balances in micro-STX"),
		metric.WithUnit("uSTX"),
	)
	if err != nil {
		return fmt.Errorf("failed to create total balance gauge: %w", err)
	}

	mp.stakedValueGauge, err = mp.meter.Int64Gauge(
		PotStakedValue,
		metric.WithDescription("Value of the staked position in micro-STX"),
		metric.WithUnit("uSTX"),
	)
	if err != nil {
		return fmt.Errorf("failed to create staked value gauge: %w", err)
	}

	mp.activeParticipantsGauge, err = mp.meter.Int64Gauge(
		PotActiveParticipants,
		metric.WithDescription("Participants with a non-zero balance"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create active participants gauge: %w", err)
	}

	mp.drawsCounter, err = mp.meter.Int64Counter(
		DrawsTotal,
		metric.WithDescription("Total number of executed draws"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create draws counter: %w", err)
	}

	mp.drawParticipantsHist, err = mp.meter.Int64Histogram(
		DrawParticipants,
		metric.WithDescription("Active participants per draw"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 25, 50, 100, 250, 500, 1000),
	)
	if err != nil {
		return fmt.Errorf("failed to create draw participants histogram: %w", err)
	}

	mp.entropyRequestsCounter, err = mp.meter.Int64Counter(
		EntropyRequestsTotal,
		metric.WithDescription("Entropy lookups served by the draw beacon"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create entropy requests counter: %w", err)
	}

	mp.natsMessagesReceivedCounter, err = mp.meter.Int64Counter(
		NATSMessagesReceivedTotal,
		metric.WithDescription("Total number of NATS messages received"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create NATS messages received counter: %w", err)
	}

	mp.natsMessagesPublishedCounter, err = mp.meter.Int64Counter(
		NATSMessagesPublishedTotal,
		metric.WithDescription("Total number of NATS messages published"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create NATS messages published counter: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordPotOperation counts a pot write by its outcome ("ok" or an error kind)
func (mp *MetricsProvider) RecordPotOperation(operation string, outcome string) {
	if !mp.isEnabled() {
		return
	}

	mp.potOperationsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelOperation, operation),
			attribute.String(LabelOutcome, outcome),
		),
	)
}

// RecordDraw records an executed draw
func (mp *MetricsProvider) RecordDraw(participants int) {
	if !mp.isEnabled() {
		return
	}

	ctx := context.Background()
	mp.drawsCounter.Add(ctx, 1)
	mp.drawParticipantsHist.Record(ctx, int64(participants))
}

// RecordPoolGauges records the committed pool figures
func (mp *MetricsProvider) RecordPoolGauges(totalPool, stakedValue uint64, activeParticipants int) {
	if !mp.isEnabled() {
		return
	}

	ctx := context.Background()
	mp.totalBalanceGauge.Record(ctx, clampInt64(totalPool))
	mp.stakedValueGauge.Record(ctx, clampInt64(stakedValue))
	mp.activeParticipantsGauge.Record(ctx, int64(activeParticipants))
}

// RecordEntropyRequest records a beacon lookup
func (mp *MetricsProvider) RecordEntropyRequest(cacheHit bool) {
	if !mp.isEnabled() {
		return
	}

	mp.entropyRequestsCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.Bool(LabelCacheHit, cacheHit)),
	)
}

// RecordNATSMessageReceived records a NATS message being received
func (mp *MetricsProvider) RecordNATSMessageReceived(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesReceivedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.natsMessagesPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// isEnabled checks if instruments exist and may be written
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.meter != nil
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	if globalMetrics != nil {
		return globalMetrics.Shutdown(ctx)
	}
	return nil
}
