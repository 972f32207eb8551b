package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nfmedicos/mailagent/internal/config"
	"github.com/nfmedicos/mailagent/internal/instrumentation"
	"github.com/nfmedicos/mailagent/internal/logging"
	"github.com/nfmedicos/mailagent/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		httpAddr       string
		subsidiary     string
		model          string
		runTimeout     time.Duration
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the workflow HTTP service",
		Long: `Start the HTTP service exposing the harvest workflow.

Endpoints:
  POST /run           trigger a workflow run
  GET  /healthz       liveness probe
  GET  /readyz        readiness probe

Configuration comes from environment variables; flags override them:
  GMAIL_MCP_AUTH_EXPRESSION   Gmail connector authorization expression
  GMAIL_MCP_TOKEN_FILE        OAuth token file used to mint the expression
  OPENAI_API_KEY              execution engine API key (required)
  WORKFLOW_SUBSIDIARY         default subsidiary label segment
  WORKFLOW_MODEL              model identifier
  WORKFLOW_RUN_TIMEOUT        per-run timeout

Prometheus metrics are served on a dedicated listener (default :9090).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := setupLogging(debugMode)

			cfg := config.Load()
			if cmd.Flags().Changed("http-addr") {
				cfg.HTTPAddr = httpAddr
			}
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

			instrConfig := instrumentation.DefaultConfig()
			instrConfig.ServiceVersion = version
			if cmd.Flags().Changed("metrics-addr") {
				instrConfig.MetricsAddr = metricsAddr
			}
			if err := instrConfig.Validate(); err != nil {
				return fmt.Errorf("invalid instrumentation configuration: %w", err)
			}

			provider, err := instrumentation.NewProvider(ctx, instrConfig)
			if err != nil {
				return fmt.Errorf("failed to initialize instrumentation: %w", err)
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
				defer cancel()
				if err := provider.Shutdown(shutdownCtx); err != nil {
					logger.Error("instrumentation shutdown failed", logging.Err(err))
				}
			}()

			runner, err := buildRunner(ctx, cfg, provider.Metrics(), logger)
			if err != nil {
				return err
			}

			apiServer, err := server.New(server.Config{
				Addr:    cfg.HTTPAddr,
				Runner:  runner,
				Metrics: provider.Metrics(),
				Logger:  logger,
			})
			if err != nil {
				return fmt.Errorf("failed to build run API server: %w", err)
			}

			errCh := make(chan error, 2)

			go func() {
				if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- fmt.Errorf("run API server failed: %w", err)
				}
			}()

			var metricsServer *server.MetricsServer
			if metricsEnabled && provider.Enabled() {
				metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
					Addr:                    instrConfig.MetricsAddr,
					InstrumentationProvider: provider,
					Logger:                  logger,
				})
				if err != nil {
					return fmt.Errorf("failed to build metrics server: %w", err)
				}
				go func() {
					if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						errCh <- fmt.Errorf("metrics server failed: %w", err)
					}
				}()
			}

			logger.Info("mailagent started",
				"version", version,
				"addr", cfg.HTTPAddr,
				logging.Subsidiary(cfg.Subsidiary),
			)

			select {
			case <-ctx.Done():
				logger.Info("shutdown signal received")
			case err := <-errCh:
				return err
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()

			var shutdownErrs []error
			if err := apiServer.Shutdown(shutdownCtx); err != nil {
				shutdownErrs = append(shutdownErrs, fmt.Errorf("run API server shutdown: %w", err))
			}
			if metricsServer != nil {
				if err := metricsServer.Shutdown(shutdownCtx); err != nil {
					shutdownErrs = append(shutdownErrs, fmt.Errorf("metrics server shutdown: %w", err))
				}
			}
			return errors.Join(shutdownErrs...)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&httpAddr, "http-addr", config.DefaultHTTPAddr, "Listen address for the run API")
	cmd.Flags().StringVar(&subsidiary, "subsidiary", config.DefaultSubsidiary, "Default subsidiary label segment")
	cmd.Flags().StringVar(&model, "model", config.DefaultModel, "Model identifier for the execution engine")
	cmd.Flags().DurationVar(&runTimeout, "run-timeout", config.DefaultRunTimeout, "Timeout for a single workflow run")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Serve Prometheus metrics on a dedicated listener")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Listen address for the metrics server")

	return cmd
}
