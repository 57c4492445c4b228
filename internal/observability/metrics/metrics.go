package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const exportInterval = 10 * time.Second

type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics holds the fraud review instruments. A nil *Metrics records nothing.
type Metrics struct {
	reviewEvents          metric.Int64Counter
	reviewActions         metric.Int64Counter
	notificationsRejected metric.Int64Counter
	eventDuration         metric.Float64Histogram
}

// NewProvider installs the global meter provider. With export disabled a
// noop provider keeps the instruments valid.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval))),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.StopHook(provider.Shutdown))
	}
	if log != nil {
		log.Info("metrics export enabled",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}
	return provider, nil
}

func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "fraudreview"
	}
	meter := provider.Meter(name)

	var (
		m   Metrics
		err error
	)
	if m.reviewEvents, err = meter.Int64Counter("fraudreview_events_total",
		metric.WithDescription("ENS events handled, by name and outcome.")); err != nil {
		return nil, err
	}
	if m.reviewActions, err = meter.Int64Counter("fraudreview_actions_total",
		metric.WithDescription("Order actions taken for review decisions.")); err != nil {
		return nil, err
	}
	if m.notificationsRejected, err = meter.Int64Counter("fraudreview_notifications_rejected_total",
		metric.WithDescription("Notification batches refused before any event ran.")); err != nil {
		return nil, err
	}
	if m.eventDuration, err = meter.Float64Histogram("fraudreview_event_duration_seconds",
		metric.WithDescription("Time spent handling one ENS event."),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Metrics) RecordReviewEvent(ctx context.Context, eventName, outcome string, sandbox bool) {
	if m == nil {
		return
	}
	m.reviewEvents.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("event_name", strings.TrimSpace(eventName)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
		attribute.String("environment", environmentLabel(sandbox)),
	)...))
}

func (m *Metrics) RecordReviewAction(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.reviewActions.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("action", strings.TrimSpace(action)),
	)...))
}

func (m *Metrics) RecordNotificationRejected(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.notificationsRejected.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("reason", strings.TrimSpace(reason)),
	)...))
}

// RecordEventDuration observes how long one event took, including the wait
// for the order lock.
func (m *Metrics) RecordEventDuration(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.eventDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(FilterAttributes(
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)...))
}

func environmentLabel(sandbox bool) string {
	if sandbox {
		return "sandbox"
	}
	return "production"
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		var opts []otlpmetrichttp.Option
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(ctx, opts...)
	case "", "grpc", "grpc/protobuf":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(ctx, opts...)
	}
	return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
}

// allowedLabelKeys bounds label cardinality. Order numbers and transaction
// ids never become labels.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"event_name":  {},
	"outcome":     {},
	"action":      {},
	"reason":      {},
	"environment": {},
	"status_code": {},
	"route":       {},
	"method":      {},
}

func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; ok {
			filtered = append(filtered, attr)
		}
	}
	return filtered
}
