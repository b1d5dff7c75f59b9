package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Operation tracks one traced unit of work, such as a validation run.
type Operation struct {
	Name      string
	RequestID string
	StartTime time.Time

	span trace.Span
}

// StartOperation starts a span named name and returns the derived context.
func StartOperation(ctx context.Context, name, requestID string, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, name)
	span.SetAttributes(attribute.String(AttrOperationName, name))
	if requestID != "" {
		span.SetAttributes(attribute.String(AttrRequestID, requestID))
	}
	span.SetAttributes(attrs...)
	return ctx, &Operation{Name: name, RequestID: requestID, StartTime: time.Now(), span: span}
}

// SetAttributes adds attributes to the operation span.
func (o *Operation) SetAttributes(attrs ...attribute.KeyValue) {
	o.span.SetAttributes(attrs...)
}

// End finishes the span, recording err when it is non-nil.
func (o *Operation) End(err error) {
	status := "ok"
	if err != nil {
		status = "error"
		o.span.RecordError(err)
		o.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	o.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, o.Duration().Milliseconds()),
	)
	o.span.End()
}

// Duration returns the elapsed time since the operation started.
func (o *Operation) Duration() time.Duration {
	return time.Since(o.StartTime)
}
