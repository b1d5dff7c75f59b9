// Package observability wires OpenTelemetry tracing and metrics for the
// validation service and exposes the health model served by /health.
//
// Setup installs OTLP HTTP exporters when telemetry is enabled:
//
//	shutdown, err := observability.Setup(ctx, &cfg.Telemetry)
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter())
//	ctx, op := observability.StartOperation(ctx, observability.SpanValidate, requestID)
//	problems := problems.Validate(text, reg)
//	metrics.RecordValidation(ctx, types, op.Duration())
//	op.End(nil)
package observability
