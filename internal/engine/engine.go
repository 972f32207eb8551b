package engine

import (
	"context"

	"github.com/nfmedicos/mailagent/internal/agent"
)

// Conversation roles and content part types.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	PartInputText  = "input_text"
	PartOutputText = "output_text"
)

// ContentPart is one typed unit of item content.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Item is one role-tagged conversation item.
type Item struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// UserItem wraps raw caller input into a user conversation item.
func UserItem(text string) Item {
	return Item{
		Role: RoleUser,
		Content: []ContentPart{
			{Type: PartInputText, Text: text},
		},
	}
}

// RunConfig carries run-level metadata for the engine invocation.
type RunConfig struct {
	// WorkflowID is the stable workflow identifier attached to traces.
	WorkflowID string

	// TraceMetadata is forwarded to the engine's tracing backend.
	TraceMetadata map[string]string
}

// Result is the terminal outcome of one engine invocation.
type Result struct {
	// NewItems are the conversation items the engine produced, in order.
	NewItems []Item

	// OutputText is the serialized form of the final structured output as
	// returned by the engine.
	OutputText string

	// Output is the final output validated against the agent's schema.
	Output *agent.EmailReport
}

// Engine runs an agent definition over a conversation and returns one
// terminal result. The call may block for an arbitrary duration while the
// model performs tool round-trips; it must honor ctx cancellation.
type Engine interface {
	Run(ctx context.Context, def *agent.Definition, conversation []Item, cfg RunConfig, rc agent.RunContext) (*Result, error)
}
