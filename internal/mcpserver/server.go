// Package mcpserver exposes the dispatcher's tools over the Model
// Context Protocol on stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"ytmcp/internal/dispatch"
)

// Server bridges MCP tool calls to the dispatcher. Tool schemas are
// published verbatim from the definition set, so MCP clients see exactly
// what the validator enforces.
type Server struct {
	mcp        *server.MCPServer
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// New builds the MCP server and registers every tool the dispatcher
// knows about.
func New(d *dispatch.Dispatcher, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mcp: server.NewMCPServer("YouTubeAPI", version,
			server.WithToolCapabilities(false)),
		dispatcher: d,
		logger:     logger,
	}
	for _, tool := range d.Tools() {
		s.mcp.AddTool(
			mcp.NewToolWithRawSchema(tool.Name, tool.Description, tool.RawInput),
			s.handle(tool.Name),
		)
	}
	return s
}

func (s *Server) handle(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError("arguments are not valid JSON"), nil
		}
		env := s.dispatcher.Invoke(ctx, name, args)
		if !env.OK() {
			body, err := json.Marshal(env.Err)
			if err != nil {
				s.logger.Error("marshal tool error", "tool", name, "error", err)
				return mcp.NewToolResultError("internal error during tool execution"), nil
			}
			return mcp.NewToolResultError(string(body)), nil
		}
		return mcp.NewToolResultText(string(env.Result)), nil
	}
}

// ServeStdio blocks serving MCP over stdin and stdout until the client
// disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}
