package agent

import (
	"encoding/json"
	"fmt"

	"github.com/nfmedicos/mailagent/internal/mcptool"
)

// DefaultName identifies the Gmail harvest agent.
const DefaultName = "MEDICALS Gmail Agent"

// ModelSettings are the invocation tuning parameters, fixed per definition.
type ModelSettings struct {
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
	Store           bool
}

// DefaultModelSettings returns the tuning used by the harvest agent.
func DefaultModelSettings() ModelSettings {
	return ModelSettings{
		Temperature:     0.15,
		TopP:            1,
		MaxOutputTokens: 2048,
		Store:           true,
	}
}

// InstructionFunc generates operating instructions from a run context.
type InstructionFunc func(RunContext) string

// Definition is the immutable composition handed to the execution engine:
// name, instruction generator, tool bindings, output schema and tuning.
// It is built once and reused concurrently across runs; it holds no mutable
// run-scoped state.
type Definition struct {
	name         string
	model        string
	instructions InstructionFunc
	tools        []*mcptool.Binding
	outputSchema json.RawMessage
	settings     ModelSettings
}

// NewDefinition builds an agent definition. Exactly one output schema is
// attached, reflected from the EmailReport type; at least one tool binding
// is required since the agent cannot reach the mailbox without one.
func NewDefinition(model string, tools ...*mcptool.Binding) (*Definition, error) {
	if model == "" {
		return nil, fmt.Errorf("agent definition requires a model")
	}
	if len(tools) == 0 {
		return nil, fmt.Errorf("agent definition requires at least one tool binding")
	}
	for i, tool := range tools {
		if tool == nil {
			return nil, fmt.Errorf("agent definition tool binding %d is nil", i)
		}
	}

	schema, err := OutputSchema()
	if err != nil {
		return nil, err
	}

	return &Definition{
		name:         DefaultName,
		model:        model,
		instructions: Instructions,
		tools:        append([]*mcptool.Binding(nil), tools...),
		outputSchema: schema,
		settings:     DefaultModelSettings(),
	}, nil
}

// Name returns the agent name.
func (d *Definition) Name() string {
	return d.name
}

// Model returns the model identifier.
func (d *Definition) Model() string {
	return d.model
}

// InstructionsFor generates the operating instructions for a run context.
func (d *Definition) InstructionsFor(rc RunContext) string {
	return d.instructions(rc)
}

// Tools returns a copy of the tool bindings. Each binding keeps its own
// allow-list; allow-lists never merge across bindings.
func (d *Definition) Tools() []*mcptool.Binding {
	return append([]*mcptool.Binding(nil), d.tools...)
}

// OutputSchema returns the JSON schema the final output must validate against.
func (d *Definition) OutputSchema() json.RawMessage {
	return d.outputSchema
}

// Settings returns the invocation tuning parameters.
func (d *Definition) Settings() ModelSettings {
	return d.settings
}
