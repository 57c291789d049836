package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	ai "github.com/spetersoncode/talk2mcp"
	"github.com/spetersoncode/talk2mcp/tool"
)

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name         string
	version      string
	instructions string
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// WithInstructions sets the usage instructions sent during initialization.
func WithInstructions(text string) ServerOption {
	return func(c *serverConfig) {
		c.instructions = text
	}
}

// NewServer creates an MCP server that exposes every tool in registry, in
// registration order.
func NewServer(registry *tool.Registry, opts ...ServerOption) *server.MCPServer {
	cfg := &serverConfig{
		name:    "talk2mcp-tools",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	serverOpts := []server.ServerOption{server.WithToolCapabilities(true)}
	if cfg.instructions != "" {
		serverOpts = append(serverOpts, server.WithInstructions(cfg.instructions))
	}
	s := server.NewMCPServer(cfg.name, cfg.version, serverOpts...)

	for _, t := range registry.Tools() {
		handler, ok := registry.Get(t.Name)
		if !ok {
			continue
		}
		s.AddTool(ToMCPTool(t), handlerFor(t.Name, handler))
	}

	return s
}

// handlerFor wraps a tool.Handler as an MCP tool handler.
// Handler errors become error results, not protocol errors.
func handlerFor(name string, handler tool.Handler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsJSON := "{}"
		if req.Params.Arguments != nil {
			data, err := json.Marshal(req.Params.Arguments)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to marshal arguments: %v", err)), nil
			}
			argsJSON = string(data)
		}

		result, err := handler(ctx, ai.ToolCall{Name: name, Arguments: argsJSON})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}

// ServeStdio starts an MCP server that communicates over stdin/stdout.
func ServeStdio(registry *tool.Registry, opts ...ServerOption) error {
	return server.ServeStdio(NewServer(registry, opts...))
}
