package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys for operation tracing.
// These constants define the semantic conventions for span attributes in
// the coordination core.
const (
	AttrOperationID    = "operation.id"
	AttrOperationTitle = "operation.title"
	AttrStatus         = "operation.status"
	AttrAttempt        = "operation.attempt"
	AttrVerdict        = "operation.verdict"
	AttrQueuePosition  = "queue.position"
	AttrErrorMessage   = "error.message"
)

// Span names.
const (
	SpanRun     = "operation.run"
	SpanWait    = "operation.queue_wait"
	SpanExecute = "operation.execute"
)

// StartAttempt opens a span for one task-body invocation attempt.
// The caller must call End on the returned span; use RecordVerdict or
// RecordError before ending to capture the outcome.
func StartAttempt(ctx context.Context, tracer trace.Tracer, operationID, title string, attempt int) (context.Context, trace.Span) {
	return tracer.Start(ctx, SpanExecute,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(AttrOperationID, operationID),
			attribute.String(AttrOperationTitle, title),
			attribute.Int(AttrAttempt, attempt),
		),
	)
}

// RecordVerdict annotates the span with the attempt's verdict.
func RecordVerdict(span trace.Span, verdict string) {
	span.SetAttributes(attribute.String(AttrVerdict, verdict))
	span.SetStatus(codes.Ok, "")
}

// RecordError marks the span as failed and records the error.
func RecordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	span.SetStatus(codes.Error, err.Error())
}
