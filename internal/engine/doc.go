// Package engine defines the execution engine contract: the conversation
// item shapes exchanged with the model runtime, the per-run configuration,
// and the Engine interface the workflow runner suspends on.
//
// OpenAIEngine implements the contract against the Responses API. The engine
// owns all tool round-trips; this process never invokes the hosted mailbox
// tool directly.
package engine
