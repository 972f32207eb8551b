package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nfmedicos/mailagent/internal/agent"
	"github.com/nfmedicos/mailagent/internal/config"
	"github.com/nfmedicos/mailagent/internal/engine"
	"github.com/nfmedicos/mailagent/internal/google"
	"github.com/nfmedicos/mailagent/internal/instrumentation"
	"github.com/nfmedicos/mailagent/internal/logging"
	"github.com/nfmedicos/mailagent/internal/mcptool"
	"github.com/nfmedicos/mailagent/internal/workflow"
)

// setupLogging installs the process-wide slog handler and returns the
// adapter handed to components.
func setupLogging(debug bool) logging.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logging.NewSlogAdapter(logger)
}

// expressionSource selects where the Gmail authorization expression comes
// from: the static environment value wins, otherwise it is minted from the
// stored OAuth token file.
func expressionSource(ctx context.Context, cfg config.Config) (google.ExpressionSource, error) {
	if cfg.GmailAuthExpression != "" {
		return google.StaticExpressionSource(cfg.GmailAuthExpression), nil
	}

	ts, err := google.TokenSourceFromFile(ctx, cfg.GmailTokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to build token source from %s: %w", cfg.GmailTokenFile, err)
	}
	return google.NewTokenExpressionSource(ts), nil
}

// buildRunner assembles the agent definition, execution engine and workflow
// runner from validated configuration.
func buildRunner(ctx context.Context, cfg config.Config, metrics *instrumentation.Metrics, logger logging.Logger) (*workflow.Runner, error) {
	source, err := expressionSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	expr, err := source.Expression(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Gmail authorization: %w", err)
	}
	logger.Debug("resolved Gmail authorization",
		logging.Operation("resolve_authorization"),
		"authorization", logging.SanitizeExpression(expr),
	)

	binding, err := mcptool.NewGmailBinding(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to build Gmail tool binding: %w", err)
	}

	definition, err := agent.NewDefinition(cfg.Model, binding)
	if err != nil {
		return nil, fmt.Errorf("failed to build agent definition: %w", err)
	}

	eng, err := engine.NewOpenAIEngine(engine.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build execution engine: %w", err)
	}

	runner, err := workflow.NewRunner(workflow.RunnerConfig{
		Definition: definition,
		Engine:     eng,
		Metrics:    metrics,
		Logger:     logger,
		Subsidiary: cfg.Subsidiary,
		RunTimeout: cfg.RunTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build workflow runner: %w", err)
	}
	return runner, nil
}
