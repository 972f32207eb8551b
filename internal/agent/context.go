package agent

// RunContext is the run-scoped parameter bag for one workflow invocation.
// It holds the subsidiary discriminator that parameterizes the generated
// instructions. Immutable once constructed and never shared across runs.
type RunContext struct {
	subsidiary string
}

// NewRunContext builds the context for one run.
func NewRunContext(subsidiary string) RunContext {
	return RunContext{subsidiary: subsidiary}
}

// Subsidiary returns the discriminator value for this run.
func (rc RunContext) Subsidiary() string {
	return rc.subsidiary
}
