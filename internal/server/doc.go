// Package server provides the HTTP surfaces of the service: the run API,
// Kubernetes health probes and the dedicated Prometheus metrics listener.
package server
