package workflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/nfmedicos/mailagent/internal/agent"
	"github.com/nfmedicos/mailagent/internal/engine"
	"github.com/nfmedicos/mailagent/internal/instrumentation"
	"github.com/nfmedicos/mailagent/internal/logging"
)

const (
	// WorkflowName is the trace name of the harvest workflow.
	WorkflowName = "NF-MEDICOS"

	// WorkflowID identifies this workflow in engine trace metadata.
	WorkflowID = "wf_69017440b2048190a72ae533ac695e3f0b27e32e86827535"

	// traceSourceKey and traceSourceValue tag engine-side traces with the
	// origin of the run configuration.
	traceSourceKey   = "__trace_source__"
	traceSourceValue = "agent-builder"

	defaultRunTimeout = 5 * time.Minute
)

// Input is one workflow invocation request.
type Input struct {
	// InputAsText is the user message that kicks off the run.
	InputAsText string

	// Subsidiary overrides the runner's default subsidiary when non-empty.
	Subsidiary string
}

// Result is the outcome of a successful run. OutputText is the serialized
// form of OutputParsed; the two always agree.
type Result struct {
	RunID        string
	OutputText   string
	OutputParsed *agent.EmailReport
}

// RunnerConfig configures a Runner. Definition and Engine are required.
type RunnerConfig struct {
	Definition *agent.Definition
	Engine     engine.Engine
	Metrics    *instrumentation.Metrics
	Logger     logging.Logger

	// Subsidiary is the default run discriminator when Input leaves it empty.
	Subsidiary string

	// RunTimeout bounds one run end to end. Zero means the default.
	RunTimeout time.Duration
}

// Runner executes the harvest workflow.
type Runner struct {
	definition *agent.Definition
	engine     engine.Engine
	metrics    *instrumentation.Metrics
	logger     logging.Logger
	subsidiary string
	runTimeout time.Duration
}

// NewRunner creates a Runner from the given configuration.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Definition == nil {
		return nil, fmt.Errorf("runner requires an agent definition")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("runner requires an execution engine")
	}
	if strings.TrimSpace(cfg.Subsidiary) == "" {
		return nil, fmt.Errorf("runner requires a default subsidiary")
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewSlogAdapter(nil)
	}
	timeout := cfg.RunTimeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}

	return &Runner{
		definition: cfg.Definition,
		engine:     cfg.Engine,
		metrics:    metrics,
		logger:     logger,
		subsidiary: cfg.Subsidiary,
		runTimeout: timeout,
	}, nil
}

// Run executes one workflow run. The run either yields a complete Result or
// fails as a whole; there are no partial results.
func (r *Runner) Run(ctx context.Context, input Input) (*Result, error) {
	if strings.TrimSpace(input.InputAsText) == "" {
		return nil, fmt.Errorf("input text must not be empty")
	}

	subsidiary := input.Subsidiary
	if subsidiary == "" {
		subsidiary = r.subsidiary
	}

	runID := newRunID()
	start := time.Now()

	ctx, span := instrumentation.StartWorkflowSpan(ctx, WorkflowName, runID, subsidiary)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.runTimeout)
	defer cancel()

	r.logger.Info("workflow run started",
		logging.Workflow(WorkflowName),
		logging.RunID(runID),
		logging.Subsidiary(subsidiary),
	)

	rc := agent.NewRunContext(subsidiary)
	conversation := []engine.Item{engine.UserItem(input.InputAsText)}
	runCfg := engine.RunConfig{
		WorkflowID: WorkflowID,
		TraceMetadata: map[string]string{
			traceSourceKey: traceSourceValue,
		},
	}

	engineResult, err := r.invokeEngine(ctx, conversation, runCfg, rc)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		r.finishRun(ctx, runID, subsidiary, instrumentation.StatusError, start, err)
		return nil, fmt.Errorf("workflow run %s: %w", runID, err)
	}

	// The history lives only for this run; items arrive in engine order.
	history := append(conversation, engineResult.NewItems...)
	r.logger.Debug("conversation complete",
		logging.Workflow(WorkflowName),
		logging.RunID(runID),
		"items", len(history),
	)

	report := engineResult.Output
	if report == nil {
		report = &agent.EmailReport{Emails: []agent.Email{}}
	}

	if dropped := report.TruncateAttachments(agent.MaxAttachmentRecords); dropped > 0 {
		r.logger.Warn("attachment ceiling exceeded, result truncated",
			logging.Workflow(WorkflowName),
			logging.RunID(runID),
			logging.Subsidiary(subsidiary),
			"dropped", dropped,
			"ceiling", agent.MaxAttachmentRecords,
		)
		r.metrics.RecordHarvest(ctx, subsidiary, report.AttachmentCount(), dropped)
	} else {
		r.metrics.RecordHarvest(ctx, subsidiary, report.AttachmentCount(), 0)
	}

	outputText, err := report.MarshalText()
	if err != nil {
		instrumentation.SetSpanError(span, err)
		r.finishRun(ctx, runID, subsidiary, instrumentation.StatusError, start, err)
		return nil, fmt.Errorf("workflow run %s: %w", runID, err)
	}

	instrumentation.SetSpanSuccess(span)
	r.finishRun(ctx, runID, subsidiary, instrumentation.StatusSuccess, start, nil)

	return &Result{
		RunID:        runID,
		OutputText:   outputText,
		OutputParsed: report,
	}, nil
}

// invokeEngine performs the single agent turn, wrapped in its own span and
// engine metrics.
func (r *Runner) invokeEngine(ctx context.Context, conversation []engine.Item, cfg engine.RunConfig, rc agent.RunContext) (*engine.Result, error) {
	ctx, span := instrumentation.StartEngineSpan(ctx, r.definition.Model())
	defer span.End()

	start := time.Now()
	result, err := r.engine.Run(ctx, r.definition, conversation, cfg, rc)
	duration := time.Since(start)

	if err != nil {
		instrumentation.SetSpanError(span, err)
		r.metrics.RecordEngineRequest(ctx, r.definition.Model(), instrumentation.StatusError, duration)
		return nil, err
	}

	instrumentation.SetSpanSuccess(span)
	r.metrics.RecordEngineRequest(ctx, r.definition.Model(), instrumentation.StatusSuccess, duration)
	return result, nil
}

func (r *Runner) finishRun(ctx context.Context, runID, subsidiary, status string, start time.Time, err error) {
	duration := time.Since(start)
	r.metrics.RecordWorkflowRun(ctx, WorkflowName, subsidiary, status, duration)

	if err != nil {
		r.logger.Error("workflow run failed",
			logging.Workflow(WorkflowName),
			logging.RunID(runID),
			logging.Subsidiary(subsidiary),
			logging.Status(status),
			logging.Err(err),
			logging.KeyDuration, duration.String(),
		)
		return
	}

	r.logger.Info("workflow run finished",
		logging.Workflow(WorkflowName),
		logging.RunID(runID),
		logging.Subsidiary(subsidiary),
		logging.Status(status),
		logging.KeyDuration, duration.String(),
	)
}

// newRunID returns a short random identifier for correlating a run across
// logs and traces.
func newRunID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
