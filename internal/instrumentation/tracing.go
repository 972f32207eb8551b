package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for the mailagent package.
const TracerName = "github.com/nfmedicos/mailagent"

// Span attribute keys for operations.
const (
	// SpanAttrWorkflow is the workflow name attribute.
	SpanAttrWorkflow = "workflow.name"

	// SpanAttrRunID is the run identifier attribute.
	SpanAttrRunID = "workflow.run_id"

	// SpanAttrSubsidiary is the subsidiary label attribute.
	SpanAttrSubsidiary = "workflow.subsidiary"

	// SpanAttrStatus is the operation status attribute.
	SpanAttrStatus = "workflow.status"

	// SpanAttrModel is the execution engine model attribute.
	SpanAttrModel = "engine.model"
)

// StartSpan starts a new span with the given name and attributes.
// Returns the context with the span and the span itself.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartWorkflowSpan starts the root span for one workflow run.
func StartWorkflowSpan(ctx context.Context, workflow, runID, subsidiary string) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "workflow."+workflow,
		trace.WithAttributes(
			attribute.String(SpanAttrWorkflow, workflow),
			attribute.String(SpanAttrRunID, runID),
			attribute.String(SpanAttrSubsidiary, subsidiary),
		),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartEngineSpan starts a span for one execution engine invocation.
func StartEngineSpan(ctx context.Context, model string) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "engine.run",
		trace.WithAttributes(attribute.String(SpanAttrModel, model)),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(SpanAttrStatus, StatusError))
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
	span.SetAttributes(attribute.String(SpanAttrStatus, StatusSuccess))
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID from the current span in context.
// Returns empty string if no valid span is present.
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().SpanID().String()
	}
	return ""
}
