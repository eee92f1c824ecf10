// Package observability wires OpenTelemetry tracing and metrics for the
// gateway.
//
// Tracing exports spans over OTLP HTTP:
//
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanDispatch)
//	defer span.End()
//
// Metrics go to a Prometheus pull reader, an OTLP push reader, or both.
// The Prometheus handler is mounted on /metrics by the server:
//
//	setup, err := observability.InitMeter(ctx, &meterCfg)
//	metrics, err := observability.NewMetrics(observability.Meter("whisper-gateway"))
//	metrics.RecordFailover(ctx, "transcribe", "OVERLOADED")
package observability
