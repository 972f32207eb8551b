// Package agent defines the Gmail harvest agent: its run context, the
// context-parameterized operating instructions, the structured output
// contract, and the immutable definition handed to the execution engine.
//
// A Definition carries no run-scoped state; one instance is built at startup
// and shared by every concurrent run. Per-run state lives in RunContext and
// in the workflow's conversation history.
package agent
