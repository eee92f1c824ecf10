package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/whisper-gateway/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Prometheus registers a pull reader and exposes its handler.
	Prometheus bool
	// Endpoint is the OTLP HTTP endpoint host:port. Empty disables push.
	Endpoint string
	Insecure bool
	// Interval is the OTLP export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns a Prometheus-only configuration.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Prometheus:     true,
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// MeterSetup is the result of InitMeter.
type MeterSetup struct {
	Provider *sdkmetric.MeterProvider
	// Handler serves the Prometheus exposition format. Nil when Prometheus is off.
	Handler http.Handler
}

// Shutdown flushes and stops the meter provider.
func (m *MeterSetup) Shutdown(ctx context.Context) error {
	if m == nil || m.Provider == nil {
		return nil
	}
	return m.Provider.Shutdown(ctx)
}

// InitMeter installs a meter provider as the global one, wired to a
// Prometheus reader, an OTLP periodic reader, or both.
func InitMeter(ctx context.Context, config *MeterConfig) (*MeterSetup, error) {
	res, err := newResource(ctx, config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	setup := &MeterSetup{}

	if config.Prometheus {
		// Each setup owns its registry; nothing goes to the default registerer.
		registry := promclient.NewRegistry()
		promExporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("creating prometheus exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(promExporter))
		setup.Handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	}

	if config.Endpoint != "" {
		exporterOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(config.Endpoint)}
		if config.Insecure {
			exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("creating metric exporter: %w", err)
		}
		var readerOpts []sdkmetric.PeriodicReaderOption
		if config.Interval > 0 {
			readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)))
	}

	setup.Provider = sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(setup.Provider)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"prometheus", config.Prometheus,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return setup, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by the gateway.
type Metrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
	backendTotal    metric.Int64Counter
	backendDuration metric.Float64Histogram
	probeTotal      metric.Int64Counter
	failoverTotal   metric.Int64Counter
	errorTotal      metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	m.requestTotal, err = meter.Int64Counter("request.total",
		metric.WithDescription("Total number of transcription and translation requests"))
	collect(err)
	m.requestDuration, err = meter.Float64Histogram("request.duration",
		metric.WithDescription("Duration of requests in seconds"),
		metric.WithUnit("s"))
	collect(err)
	m.requestActive, err = meter.Int64UpDownCounter("request.active",
		metric.WithDescription("Number of requests being dispatched"))
	collect(err)
	m.backendTotal, err = meter.Int64Counter("backend.call.total",
		metric.WithDescription("Backend calls by backend, role, task and outcome"))
	collect(err)
	m.backendDuration, err = meter.Float64Histogram("backend.call.duration",
		metric.WithDescription("Duration of backend calls in seconds"),
		metric.WithUnit("s"))
	collect(err)
	m.probeTotal, err = meter.Int64Counter("backend.probe.total",
		metric.WithDescription("Probes sent to backends by admission outcome"))
	collect(err)
	m.failoverTotal, err = meter.Int64Counter("dispatch.failover.total",
		metric.WithDescription("Requests moved from the preferred to the backup backend"))
	collect(err)
	m.errorTotal, err = meter.Int64Counter("error.total",
		metric.WithDescription("Errors by code and component"))
	collect(err)

	if len(errs) > 0 {
		return nil, fmt.Errorf("creating instruments: %w", errors.Join(errs...))
	}
	return &m, nil
}

// RecordRequestStart increments the active request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements active requests and records the completed request.
func (m *Metrics) RecordRequestEnd(ctx context.Context, service, operation, status string, duration time.Duration) {
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("operation", operation),
	))
}

// RecordBackendCall records one transcribe or translate call.
func (m *Metrics) RecordBackendCall(ctx context.Context, backend, role, task, status string, duration time.Duration) {
	m.backendTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("role", role),
		attribute.String("task", task),
		attribute.String("status", status),
	))
	m.backendDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("task", task),
	))
}

// RecordProbe records whether a probe got a slot on the backend.
func (m *Metrics) RecordProbe(ctx context.Context, backend string, admitted bool) {
	m.probeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.Bool("admitted", admitted),
	))
}

// RecordFailover records a move to the backup backend and its cause.
func (m *Metrics) RecordFailover(ctx context.Context, task, reason string) {
	m.failoverTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("task", task),
		attribute.String("reason", reason),
	))
}

// RecordError records an error by code and component.
func (m *Metrics) RecordError(ctx context.Context, code, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("component", component),
	))
}
