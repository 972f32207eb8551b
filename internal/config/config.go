package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default values for optional settings.
const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultModel         = "gpt-4.1-mini"
	DefaultSubsidiary    = "MEDICALS"
	DefaultHTTPAddr      = ":8080"
	DefaultRunTimeout    = 5 * time.Minute
)

// Config holds the process configuration, read once at startup.
// Misconfiguration is a startup-time fatal error, never a per-run error.
type Config struct {
	// GmailAuthExpression is the CEL authorization expression for the hosted
	// Gmail connector. Required unless GmailTokenFile is set.
	GmailAuthExpression string

	// GmailTokenFile is an optional path to a Google OAuth token file used to
	// mint the authorization expression when GmailAuthExpression is not set.
	GmailTokenFile string

	// OpenAIAPIKey authenticates calls to the execution engine.
	OpenAIAPIKey string

	// OpenAIBaseURL is the engine API base URL (default: the public endpoint).
	OpenAIBaseURL string

	// Model is the model identifier handed to the engine per run.
	Model string

	// Subsidiary is the default run discriminator; requests may override it.
	Subsidiary string

	// HTTPAddr is the listen address for the workflow HTTP API.
	HTTPAddr string

	// RunTimeout bounds a single workflow run, including all tool round-trips
	// performed by the engine.
	RunTimeout time.Duration
}

// Load returns a Config populated from environment variables.
func Load() Config {
	return Config{
		GmailAuthExpression: os.Getenv("GMAIL_MCP_AUTH_EXPRESSION"),
		GmailTokenFile:      os.Getenv("GMAIL_MCP_TOKEN_FILE"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       getEnvOrDefault("OPENAI_BASE_URL", DefaultOpenAIBaseURL),
		Model:               getEnvOrDefault("WORKFLOW_MODEL", DefaultModel),
		Subsidiary:          getEnvOrDefault("WORKFLOW_SUBSIDIARY", DefaultSubsidiary),
		HTTPAddr:            getEnvOrDefault("HTTP_ADDR", DefaultHTTPAddr),
		RunTimeout:          getEnvDurationOrDefault("WORKFLOW_RUN_TIMEOUT", DefaultRunTimeout),
	}
}

// Validate checks that every required value is present. It must be called
// before any run is accepted so misconfiguration surfaces at startup.
func (c *Config) Validate() error {
	if c.GmailAuthExpression == "" && c.GmailTokenFile == "" {
		return fmt.Errorf("missing Gmail authorization: set GMAIL_MCP_AUTH_EXPRESSION or GMAIL_MCP_TOKEN_FILE")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("missing OPENAI_API_KEY required for the execution engine")
	}
	if c.Subsidiary == "" {
		return fmt.Errorf("subsidiary must not be empty")
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("run timeout must be positive, got %s", c.RunTimeout)
	}
	return nil
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDurationOrDefault returns the duration value of an environment
// variable or a default value. Plain integers are read as seconds.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
