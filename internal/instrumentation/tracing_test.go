package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// testTracerProvider installs a recording tracer provider as the global
// provider so the package-level span helpers are observable.
func testTracerProvider(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return provider, recorder
}

func TestStartWorkflowSpan(t *testing.T) {
	provider, recorder := testTracerProvider(t)

	ctx := context.Background()
	tracer := provider.Tracer(TracerName)
	ctx, parent := tracer.Start(ctx, "parent")

	_, span := StartWorkflowSpan(ctx, "NF-MEDICOS", "run-1", "MEDICALS")
	span.End()
	parent.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 ended spans, got %d", len(spans))
	}

	workflowSpan := spans[0]
	if workflowSpan.Name() != "workflow.NF-MEDICOS" {
		t.Errorf("expected span name 'workflow.NF-MEDICOS', got %q", workflowSpan.Name())
	}
	if workflowSpan.SpanKind() != trace.SpanKindServer {
		t.Errorf("expected server span kind, got %v", workflowSpan.SpanKind())
	}

	attrs := map[string]string{}
	for _, kv := range workflowSpan.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	if attrs[SpanAttrWorkflow] != "NF-MEDICOS" {
		t.Errorf("expected workflow attribute 'NF-MEDICOS', got %q", attrs[SpanAttrWorkflow])
	}
	if attrs[SpanAttrRunID] != "run-1" {
		t.Errorf("expected run_id attribute 'run-1', got %q", attrs[SpanAttrRunID])
	}
	if attrs[SpanAttrSubsidiary] != "MEDICALS" {
		t.Errorf("expected subsidiary attribute 'MEDICALS', got %q", attrs[SpanAttrSubsidiary])
	}
}

func TestStartEngineSpan(t *testing.T) {
	provider, recorder := testTracerProvider(t)

	tracer := provider.Tracer(TracerName)
	ctx, parent := tracer.Start(context.Background(), "parent")

	_, span := StartEngineSpan(ctx, "gpt-4.1-mini")
	span.End()
	parent.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 ended spans, got %d", len(spans))
	}

	engineSpan := spans[0]
	if engineSpan.Name() != "engine.run" {
		t.Errorf("expected span name 'engine.run', got %q", engineSpan.Name())
	}
	if engineSpan.SpanKind() != trace.SpanKindClient {
		t.Errorf("expected client span kind, got %v", engineSpan.SpanKind())
	}
}

func TestSetSpanError(t *testing.T) {
	provider, recorder := testTracerProvider(t)

	_, span := provider.Tracer(TracerName).Start(context.Background(), "op")
	SetSpanError(span, errors.New("engine unavailable"))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(spans))
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected error event to be recorded")
	}
}

func TestSetSpanError_NilError(t *testing.T) {
	provider, recorder := testTracerProvider(t)

	_, span := provider.Tracer(TracerName).Start(context.Background(), "op")
	SetSpanError(span, nil)
	span.End()

	spans := recorder.Ended()
	if len(spans[0].Events()) != 0 {
		t.Error("expected no events for nil error")
	}
}

func TestGetTraceID(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace ID without a span, got %q", id)
	}
	if id := GetSpanID(context.Background()); id != "" {
		t.Errorf("expected empty span ID without a span, got %q", id)
	}

	provider, _ := testTracerProvider(t)
	ctx, span := provider.Tracer(TracerName).Start(context.Background(), "op")
	defer span.End()

	if id := GetTraceID(ctx); id == "" {
		t.Error("expected non-empty trace ID inside a span")
	}
	if id := GetSpanID(ctx); id == "" {
		t.Error("expected non-empty span ID inside a span")
	}
}
