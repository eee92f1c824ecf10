package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/whisper-gateway/component"
	"github.com/kbukum/whisper-gateway/observability"
)

// telemetry owns the meter and tracer providers. They are created before
// any other component so backends and the dispatcher can record from the
// first request; Stop flushes them last.
type telemetry struct {
	cfg     observability.Config
	meter   *observability.MeterSetup
	tracer  *sdktrace.TracerProvider
	metrics *observability.Metrics
}

var (
	_ component.Component   = (*telemetry)(nil)
	_ component.Describable = (*telemetry)(nil)
)

func newTelemetry(ctx context.Context, base Config) (*telemetry, error) {
	t := &telemetry{cfg: base.Observability}

	if m := base.Observability.Metrics; m.Enabled {
		mc := observability.DefaultMeterConfig(base.Name)
		mc.ServiceVersion = base.Version
		mc.Environment = base.Environment
		mc.Prometheus = m.Prometheus
		mc.Endpoint = m.Endpoint
		mc.Insecure = m.Insecure
		mc.Interval = m.Interval

		setup, err := observability.InitMeter(ctx, &mc)
		if err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		t.meter = setup
		if t.metrics, err = observability.NewMetrics(observability.Meter(base.Name)); err != nil {
			_ = setup.Shutdown(ctx)
			return nil, fmt.Errorf("telemetry: %w", err)
		}
	}

	if tr := base.Observability.Tracing; tr.Enabled {
		tc := observability.DefaultTracerConfig(base.Name)
		tc.ServiceVersion = base.Version
		tc.Environment = base.Environment
		tc.Endpoint = tr.Endpoint
		tc.Insecure = tr.Insecure
		tc.SampleRate = tr.SampleRate

		tp, err := observability.InitTracer(ctx, &tc)
		if err != nil {
			_ = t.meter.Shutdown(ctx)
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		t.tracer = tp
	}
	return t, nil
}

// Metrics is nil when metrics are disabled.
func (t *telemetry) Metrics() *observability.Metrics { return t.metrics }

// Tracing reports whether spans are exported.
func (t *telemetry) Tracing() bool { return t.tracer != nil }

// Handler is the Prometheus handler, nil without a Prometheus reader.
func (t *telemetry) Handler() http.Handler {
	if t.meter == nil {
		return nil
	}
	return t.meter.Handler
}

func (t *telemetry) Name() string { return "telemetry" }

func (t *telemetry) Start(context.Context) error { return nil }

func (t *telemetry) Stop(ctx context.Context) error {
	var errs []error
	if t.tracer != nil {
		errs = append(errs, t.tracer.Shutdown(ctx))
	}
	errs = append(errs, t.meter.Shutdown(ctx))
	return stderrors.Join(errs...)
}

func (t *telemetry) Health(context.Context) component.Health {
	return component.Health{Name: t.Name(), Status: component.StatusHealthy}
}

func (t *telemetry) Describe() component.Description {
	var parts []string
	if t.meter != nil {
		if t.meter.Handler != nil {
			parts = append(parts, "prometheus /metrics")
		}
		if t.cfg.Metrics.Endpoint != "" {
			parts = append(parts, "metrics otlp="+t.cfg.Metrics.Endpoint)
		}
	}
	if t.tracer != nil {
		parts = append(parts, "traces otlp="+t.cfg.Tracing.Endpoint)
	}
	if len(parts) == 0 {
		parts = append(parts, "disabled")
	}
	return component.Description{
		Name:    "Telemetry",
		Type:    "telemetry",
		Details: strings.Join(parts, ", "),
	}
}
