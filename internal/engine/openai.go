package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nfmedicos/mailagent/internal/agent"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	responsesPath    = "/responses"
	defaultTimeout   = 5 * time.Minute
	maxResponseBytes = 16 << 20
)

// Config configures the OpenAI Responses API client.
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// OpenAIEngine executes agent runs against the Responses API.
type OpenAIEngine struct {
	apiKey      string
	endpointURL string
	httpClient  *http.Client
}

var _ Engine = (*OpenAIEngine)(nil)

// NewOpenAIEngine builds the client. The API key is required.
func NewOpenAIEngine(cfg Config) (*OpenAIEngine, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("new engine: api key is required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &OpenAIEngine{
		apiKey:      apiKey,
		endpointURL: strings.TrimRight(baseURL, "/") + responsesPath,
		httpClient:  httpClient,
	}, nil
}

// Run performs one engine invocation and returns the terminal result.
func (e *OpenAIEngine) Run(ctx context.Context, def *agent.Definition, conversation []Item, cfg RunConfig, rc agent.RunContext) (*Result, error) {
	payload, err := buildResponsesRequest(def, conversation, cfg, rc)
	if err != nil {
		return nil, fmt.Errorf("engine request: %w", err)
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("engine request encode: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpointURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("engine request build: %w", err)
	}
	httpRequest.Header.Set("Authorization", "Bearer "+e.apiKey)
	httpRequest.Header.Set("Content-Type", "application/json")

	response, err := e.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("engine request execute: %w", err)
	}
	defer response.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("engine response read: %w", err)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("engine response status=%d body=%s", response.StatusCode, string(bodyBytes))
	}

	var parsed responsesResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, fmt.Errorf("engine response decode: %w", err)
	}

	return toResult(&parsed)
}

type responsesRequest struct {
	Model           string            `json:"model"`
	Instructions    string            `json:"instructions"`
	Input           []Item            `json:"input"`
	Tools           []json.RawMessage `json:"tools,omitempty"`
	Text            textConfig        `json:"text"`
	Temperature     float64           `json:"temperature"`
	TopP            float64           `json:"top_p"`
	MaxOutputTokens int               `json:"max_output_tokens"`
	Store           bool              `json:"store"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

type textConfig struct {
	Format formatConfig `json:"format"`
}

type formatConfig struct {
	Type   string          `json:"type"`
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
	Strict bool            `json:"strict"`
}

type responsesResponse struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  *responseError `json:"error"`
	Output []outputItem   `json:"output"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type outputItem struct {
	Type    string        `json:"type"`
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

func buildResponsesRequest(def *agent.Definition, conversation []Item, cfg RunConfig, rc agent.RunContext) (responsesRequest, error) {
	tools := def.Tools()
	encodedTools := make([]json.RawMessage, len(tools))
	for i := range tools {
		encoded, err := json.Marshal(tools[i])
		if err != nil {
			return responsesRequest{}, fmt.Errorf("encode tool binding %d: %w", i, err)
		}
		encodedTools[i] = encoded
	}

	metadata := make(map[string]string, len(cfg.TraceMetadata)+1)
	for k, v := range cfg.TraceMetadata {
		metadata[k] = v
	}
	if cfg.WorkflowID != "" {
		metadata["workflow_id"] = cfg.WorkflowID
	}

	settings := def.Settings()
	return responsesRequest{
		Model:        def.Model(),
		Instructions: def.InstructionsFor(rc),
		Input:        conversation,
		Tools:        encodedTools,
		Text: textConfig{
			Format: formatConfig{
				Type:   "json_schema",
				Name:   "email_report",
				Schema: def.OutputSchema(),
				Strict: true,
			},
		},
		Temperature:     settings.Temperature,
		TopP:            settings.TopP,
		MaxOutputTokens: settings.MaxOutputTokens,
		Store:           settings.Store,
		Metadata:        metadata,
	}, nil
}

func toResult(response *responsesResponse) (*Result, error) {
	if response.Error != nil {
		return nil, fmt.Errorf("engine run failed: %s: %s", response.Error.Code, response.Error.Message)
	}
	if response.Status != "" && response.Status != "completed" {
		return nil, fmt.Errorf("engine run ended with status %q", response.Status)
	}

	result := &Result{}
	for _, item := range response.Output {
		if item.Type != "message" {
			// Tool-call bookkeeping items stay engine-internal.
			continue
		}
		result.NewItems = append(result.NewItems, Item{
			Role:    item.Role,
			Content: item.Content,
		})
		for _, part := range item.Content {
			if part.Type == PartOutputText {
				result.OutputText = part.Text
			}
		}
	}

	if result.OutputText == "" {
		return nil, fmt.Errorf("engine returned no final output text")
	}

	var report agent.EmailReport
	decoder := json.NewDecoder(strings.NewReader(result.OutputText))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&report); err != nil {
		return nil, fmt.Errorf("engine output failed schema validation: %w", err)
	}
	if report.Emails == nil {
		report.Emails = []agent.Email{}
	}
	result.Output = &report

	return result, nil
}
