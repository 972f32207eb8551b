package instrumentation

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func testMetrics(t *testing.T) *Metrics {
	t.Helper()

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := NewMetrics(provider.Meter("test"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return metrics
}

func TestNewMetrics(t *testing.T) {
	m := testMetrics(t)

	if m.workflowRunsTotal == nil {
		t.Error("expected workflowRunsTotal to be initialized")
	}
	if m.workflowRunDuration == nil {
		t.Error("expected workflowRunDuration to be initialized")
	}
	if m.attachmentsHarvested == nil {
		t.Error("expected attachmentsHarvested to be initialized")
	}
	if m.attachmentsTruncated == nil {
		t.Error("expected attachmentsTruncated to be initialized")
	}
	if m.engineRequestsTotal == nil {
		t.Error("expected engineRequestsTotal to be initialized")
	}
	if m.httpRequestsTotal == nil {
		t.Error("expected httpRequestsTotal to be initialized")
	}
}

func TestMetrics_Record(t *testing.T) {
	m := testMetrics(t)
	ctx := context.Background()

	// Recording must not panic on an initialized recorder.
	m.RecordWorkflowRun(ctx, "NF-MEDICOS", "MEDICALS", StatusSuccess, 3*time.Second)
	m.RecordHarvest(ctx, "MEDICALS", 42, 0)
	m.RecordHarvest(ctx, "MEDICALS", 900, 12)
	m.RecordEngineRequest(ctx, "gpt-4.1-mini", StatusError, 500*time.Millisecond)
	m.RecordHTTPRequest(ctx, "POST", "/run", 200, 10*time.Millisecond)
}

func TestMetrics_RecordUninitialized(t *testing.T) {
	// A zero-value recorder is the disabled path; all methods are no-ops.
	m := &Metrics{}
	ctx := context.Background()

	m.RecordWorkflowRun(ctx, "NF-MEDICOS", "MEDICALS", StatusSuccess, time.Second)
	m.RecordHarvest(ctx, "MEDICALS", 1, 1)
	m.RecordEngineRequest(ctx, "gpt-4.1-mini", StatusSuccess, time.Second)
	m.RecordHTTPRequest(ctx, "GET", "/healthz", 200, time.Millisecond)
}
