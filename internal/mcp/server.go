// Package mcp exposes the harvest workflow as an MCP tool over stdio, so
// MCP-capable clients can trigger runs without the HTTP surface.
package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/nfmedicos/mailagent/internal/logging"
	"github.com/nfmedicos/mailagent/internal/workflow"
)

// ToolName is the MCP name of the workflow trigger tool.
const ToolName = "run_email_harvest"

// Runner is the workflow entry point the MCP server drives.
type Runner interface {
	Run(ctx context.Context, input workflow.Input) (*workflow.Result, error)
}

// Server wraps an MCP server exposing the workflow as a tool.
type Server struct {
	mcpServer *mcpserver.MCPServer
	runner    Runner
	logger    logging.Logger
}

// New creates the MCP server and registers the workflow tool.
func New(version string, runner Runner, logger logging.Logger) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("mcp server requires a workflow runner")
	}
	if logger == nil {
		logger = logging.NewSlogAdapter(nil)
	}

	s := &Server{
		mcpServer: mcpserver.NewMCPServer("mailagent", version,
			mcpserver.WithToolCapabilities(true),
		),
		runner: runner,
		logger: logger,
	}
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	tool := mcp.NewTool(ToolName,
		mcp.WithDescription("Run the fiscal note harvest workflow against the configured mailbox and return the structured email report"),
		mcp.WithString("input_as_text",
			mcp.Required(),
			mcp.Description("User message that kicks off the run"),
		),
		mcp.WithString("subsidiary",
			mcp.Description("Subsidiary label segment, overriding the configured default"),
		),
	)

	s.mcpServer.AddTool(tool, s.handleRun)
}

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	inputAsText, ok := args["input_as_text"].(string)
	if !ok || inputAsText == "" {
		return mcp.NewToolResultError("input_as_text is required"), nil
	}
	subsidiary, _ := args["subsidiary"].(string)

	result, err := s.runner.Run(ctx, workflow.Input{
		InputAsText: inputAsText,
		Subsidiary:  subsidiary,
	})
	if err != nil {
		s.logger.Error("mcp tool run failed",
			logging.Operation(ToolName),
			logging.Err(err),
		)
		return mcp.NewToolResultError(fmt.Sprintf("Workflow run failed: %v", err)), nil
	}

	return mcp.NewToolResultText(result.OutputText), nil
}

// ServeStdio blocks serving MCP requests over stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting MCP stdio server", logging.Operation("serve_stdio"))
	return mcpserver.ServeStdio(s.mcpServer)
}
