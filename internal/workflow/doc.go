// Package workflow runs the NF-MEDICOS harvest workflow.
//
// Runner drives a single agent turn against the execution engine, enforces
// the local attachment ceiling on the structured result and records the run
// in logs, metrics and traces. Each Run is independent: conversation state
// never leaks between runs.
package workflow
