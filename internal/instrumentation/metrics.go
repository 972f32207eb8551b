package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency
const (
	attrMethod     = "method"
	attrPath       = "path"
	attrStatus     = "status"
	attrWorkflow   = "workflow"
	attrSubsidiary = "subsidiary"
	attrModel      = "model"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// Workflow metrics
	workflowRunsTotal    metric.Int64Counter
	workflowRunDuration  metric.Float64Histogram
	attachmentsHarvested metric.Int64Histogram
	attachmentsTruncated metric.Int64Counter

	// Execution engine metrics
	engineRequestsTotal   metric.Int64Counter
	engineRequestDuration metric.Float64Histogram

	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.workflowRunsTotal, err = meter.Int64Counter(
		"workflow_runs_total",
		metric.WithDescription("Total number of workflow runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow_runs_total counter: %w", err)
	}

	m.workflowRunDuration, err = meter.Float64Histogram(
		"workflow_run_duration_seconds",
		metric.WithDescription("Workflow run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0, 300.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow_run_duration_seconds histogram: %w", err)
	}

	m.attachmentsHarvested, err = meter.Int64Histogram(
		"workflow_attachments_harvested",
		metric.WithDescription("Attachment records returned per successful run"),
		metric.WithUnit("{record}"),
		metric.WithExplicitBucketBoundaries(0, 1, 10, 50, 100, 300, 600, 900),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow_attachments_harvested histogram: %w", err)
	}

	m.attachmentsTruncated, err = meter.Int64Counter(
		"workflow_attachments_truncated_total",
		metric.WithDescription("Attachment records dropped by the local harvest ceiling"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow_attachments_truncated_total counter: %w", err)
	}

	m.engineRequestsTotal, err = meter.Int64Counter(
		"engine_requests_total",
		metric.WithDescription("Total number of execution engine invocations"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine_requests_total counter: %w", err)
	}

	m.engineRequestDuration, err = meter.Float64Histogram(
		"engine_request_duration_seconds",
		metric.WithDescription("Execution engine invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0, 300.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine_request_duration_seconds histogram: %w", err)
	}

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordWorkflowRun records a completed workflow run.
func (m *Metrics) RecordWorkflowRun(ctx context.Context, workflow, subsidiary, status string, duration time.Duration) {
	if m.workflowRunsTotal == nil || m.workflowRunDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrWorkflow, workflow),
		attribute.String(attrSubsidiary, subsidiary),
		attribute.String(attrStatus, status),
	}

	m.workflowRunsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.workflowRunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordHarvest records the attachment yield of a successful run and any
// records dropped by the local ceiling.
func (m *Metrics) RecordHarvest(ctx context.Context, subsidiary string, harvested, truncated int) {
	if m.attachmentsHarvested == nil || m.attachmentsTruncated == nil {
		return // Instrumentation not initialized
	}

	attrs := metric.WithAttributes(attribute.String(attrSubsidiary, subsidiary))
	m.attachmentsHarvested.Record(ctx, int64(harvested), attrs)
	if truncated > 0 {
		m.attachmentsTruncated.Add(ctx, int64(truncated), attrs)
	}
}

// RecordEngineRequest records one execution engine invocation.
func (m *Metrics) RecordEngineRequest(ctx context.Context, model, status string, duration time.Duration) {
	if m.engineRequestsTotal == nil || m.engineRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrModel, model),
		attribute.String(attrStatus, status),
	}

	m.engineRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.engineRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
