package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	ai "github.com/spetersoncode/talk2mcp"
)

// ClientName is reported to servers during initialization.
const ClientName = "talk2mcp"

// Session is a live connection to an MCP server. It is assumed to stay
// reachable for the life of a task; a lost connection is not re-established.
type Session struct {
	client *client.Client
}

var _ ai.ToolSession = (*Session)(nil)

// NewStdioSession launches command as a subprocess and talks MCP over its
// stdin and stdout.
//
// Example:
//
//	session, err := mcp.NewStdioSession(ctx, "go", nil, "run", "./cmd/mcpserver")
func NewStdioSession(ctx context.Context, command string, env []string, args ...string) (*Session, error) {
	c := client.NewClient(transport.NewStdio(command, env, args...))
	return NewSessionFromClient(ctx, c)
}

// NewSSESession connects to an MCP server over SSE.
func NewSSESession(ctx context.Context, baseURL string) (*Session, error) {
	c, err := client.NewSSEMCPClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSE MCP client: %w", err)
	}
	return NewSessionFromClient(ctx, c)
}

// NewSessionFromClient starts and initializes an unstarted client.
// It is used with in-process clients in tests.
func NewSessionFromClient(ctx context.Context, c *client.Client) (*Session, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP client: %w", err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    ClientName,
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	return &Session{client: c}, nil
}

// ListTools returns the server's tools in the order the server listed them.
func (s *Session) ListTools(ctx context.Context) ([]ai.Tool, error) {
	result, err := s.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return FromMCPTools(result.Tools), nil
}

// CallTool invokes a tool on the server. Transport and protocol faults are
// returned as errors; a tool that ran and failed yields a result with IsError.
func (s *Session) CallTool(ctx context.Context, call ai.ToolCall) (ai.ToolResult, error) {
	result, err := s.client.CallTool(ctx, ToMCPCallToolRequest(call))
	if err != nil {
		return ai.ToolResult{}, fmt.Errorf("call %s: %w", call.Name, err)
	}
	return FromMCPCallToolResult(call.ID, result), nil
}

// Close closes the connection to the MCP server.
func (s *Session) Close() error {
	return s.client.Close()
}
