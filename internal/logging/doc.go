// Package logging provides structured logging helpers built on log/slog.
//
// It defines the canonical attribute keys used across the service so that
// workflow runs, engine calls and HTTP requests can be correlated in log
// output, plus small helpers for attributes that need consistent handling
// (errors, sanitized secrets).
package logging
