// Package mcptool describes the hosted MCP capabilities the agent is allowed
// to invoke during a run.
//
// A Binding is a pure description: the connector identity, the fixed
// allow-list of remote operations, and the authorization payload the engine
// forwards to the connector. No network call happens here; the execution
// engine performs every tool round-trip.
package mcptool
