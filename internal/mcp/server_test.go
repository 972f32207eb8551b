package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfmedicos/mailagent/internal/agent"
	"github.com/nfmedicos/mailagent/internal/workflow"
)

type stubRunner struct {
	result *workflow.Result
	err    error
	input  workflow.Input
}

func (s *stubRunner) Run(_ context.Context, input workflow.Input) (*workflow.Result, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = ToolName
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestNewRequiresRunner(t *testing.T) {
	_, err := New("test", nil, nil)
	assert.ErrorContains(t, err, "workflow runner")
}

func TestHandleRun(t *testing.T) {
	runner := &stubRunner{
		result: &workflow.Result{
			RunID:        "run-1",
			OutputText:   `{"emails":[]}`,
			OutputParsed: &agent.EmailReport{Emails: []agent.Email{}},
		},
	}
	srv, err := New("test", runner, nil)
	require.NoError(t, err)

	result, err := srv.handleRun(context.Background(), callRequest(map[string]any{
		"input_as_text": "colete as notas",
		"subsidiary":    "ODONTO",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Equal(t, `{"emails":[]}`, resultText(t, result))
	assert.Equal(t, "colete as notas", runner.input.InputAsText)
	assert.Equal(t, "ODONTO", runner.input.Subsidiary)
}

func TestHandleRunMissingInput(t *testing.T) {
	srv, err := New("test", &stubRunner{}, nil)
	require.NoError(t, err)

	result, err := srv.handleRun(context.Background(), callRequest(map[string]any{}))
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "input_as_text is required")
}

func TestHandleRunFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("engine unavailable")}
	srv, err := New("test", runner, nil)
	require.NoError(t, err)

	result, err := srv.handleRun(context.Background(), callRequest(map[string]any{
		"input_as_text": "colete",
	}))
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "engine unavailable")
}
