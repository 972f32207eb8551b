package logging

import (
	"fmt"
	"log/slog"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyWorkflow   = "workflow"
	KeyRunID      = "run_id"
	KeySubsidiary = "subsidiary"
	KeyOperation  = "operation"
	KeyStatus     = "status"
	KeyDuration   = "duration"
	KeyError      = "error"
	KeyComponent  = "component"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies (instrumentation imports logging).
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithWorkflow returns a logger with the workflow attribute set.
func WithWorkflow(logger *slog.Logger, workflow string) *slog.Logger {
	return logger.With(slog.String(KeyWorkflow, workflow))
}

// WithComponent returns a logger with the component attribute set.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String(KeyComponent, component))
}

// Workflow returns a slog attribute for the workflow name.
func Workflow(name string) slog.Attr {
	return slog.String(KeyWorkflow, name)
}

// RunID returns a slog attribute for the run identifier.
func RunID(id string) slog.Attr {
	return slog.String(KeyRunID, id)
}

// Subsidiary returns a slog attribute for the run discriminator.
func Subsidiary(s string) slog.Attr {
	return slog.String(KeySubsidiary, s)
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
// This allows safely passing Err(maybeNilErr) without adding empty attributes.
//
// Usage:
//
//	logger.Info("run finished", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		// Return an empty Group that slog will omit from output
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizeExpression returns a masked version of an authorization expression
// for logging. It returns a length indicator without exposing any content,
// since the expression carries bearer credentials for the mailbox connector.
func SanitizeExpression(expr string) string {
	if expr == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[expression:%d chars]", len(expr))
}
