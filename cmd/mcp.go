package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nfmedicos/mailagent/internal/config"
	"github.com/nfmedicos/mailagent/internal/instrumentation"
	"github.com/nfmedicos/mailagent/internal/logging"
	"github.com/nfmedicos/mailagent/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	var (
		debugMode  bool
		subsidiary string
		model      string
		runTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP stdio server",
		Long: `Start a Model Context Protocol server over stdin/stdout, exposing the
harvest workflow as the run_email_harvest tool for AI assistants.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := setupLogging(debugMode)

			cfg := config.Load()
			if cmd.Flags().Changed("subsidiary") {
				cfg.Subsidiary = subsidiary
			}
			if cmd.Flags().Changed("model") {
				cfg.Model = model
			}
			if cmd.Flags().Changed("run-timeout") {
				cfg.RunTimeout = runTimeout
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Telemetry export stays off on stdio: stdout belongs to the
			// MCP transport.
			instrConfig := instrumentation.DefaultConfig()
			instrConfig.ServiceVersion = version
			instrConfig.Enabled = false

			provider, err := instrumentation.NewProvider(ctx, instrConfig)
			if err != nil {
				return fmt.Errorf("failed to initialize instrumentation: %w", err)
			}

			runner, err := buildRunner(ctx, cfg, provider.Metrics(), logger)
			if err != nil {
				return err
			}

			srv, err := mcp.New(version, runner, logger)
			if err != nil {
				return fmt.Errorf("failed to build MCP server: %w", err)
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ServeStdio()
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutdown signal received", logging.Operation("mcp"))
				return nil
			case err := <-errCh:
				return err
			}
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&subsidiary, "subsidiary", config.DefaultSubsidiary, "Default subsidiary label segment")
	cmd.Flags().StringVar(&model, "model", config.DefaultModel, "Model identifier for the execution engine")
	cmd.Flags().DurationVar(&runTimeout, "run-timeout", config.DefaultRunTimeout, "Timeout for a single workflow run")

	return cmd
}
