package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// InitMeterProvider initializes the Prometheus exporter and MeterProvider,
// and starts Go runtime metric collection. It returns an http.Handler for
// the /metrics endpoint and a shutdown function.
func InitMeterProvider(serviceName, serviceVersion string) (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	// Same Resource as the TracerProvider.
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
	)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(15 * time.Second)); err != nil {
		return nil, nil, err
	}

	return promhttp.Handler(), mp.Shutdown, nil
}

// OrderMetrics holds the business instruments the order API records.
type OrderMetrics struct {
	placed    metric.Int64Counter
	cancelled metric.Int64Counter
	intake    metric.Float64Histogram
}

func NewOrderMetrics() (*OrderMetrics, error) {
	meter := otel.Meter("orders")

	placed, err := meter.Int64Counter("orders.placed",
		metric.WithDescription("Orders successfully placed"))
	if err != nil {
		return nil, err
	}

	cancelled, err := meter.Int64Counter("orders.cancelled",
		metric.WithDescription("Orders cancelled by customers"))
	if err != nil {
		return nil, err
	}

	intake, err := meter.Float64Histogram("orders.intake.duration",
		metric.WithDescription("Order intake duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &OrderMetrics{placed: placed, cancelled: cancelled, intake: intake}, nil
}

func (m *OrderMetrics) RecordPlaced(ctx context.Context) {
	m.placed.Add(ctx, 1)
}

func (m *OrderMetrics) RecordCancelled(ctx context.Context) {
	m.cancelled.Add(ctx, 1)
}

func (m *OrderMetrics) ObserveIntake(ctx context.Context, d time.Duration, success bool) {
	m.intake.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.Bool("success", success)))
}
