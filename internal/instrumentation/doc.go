// Package instrumentation wires OpenTelemetry metrics and tracing for the
// workflow service.
//
// Provider owns the meter and tracer providers and their exporters
// (prometheus, otlp or stdout). Metrics records the domain measurements:
// workflow runs, engine invocations and HTTP requests. Span helpers keep
// attribute naming consistent across packages.
package instrumentation
