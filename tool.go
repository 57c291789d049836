package talk2mcp

import (
	"context"
	"encoding/json"
)

// Tool describes a capability offered by the tool-execution session.
type Tool struct {
	// Name is the unique identifier for the tool.
	Name string `json:"name"`
	// Description explains what the tool does; it is shown to the model verbatim.
	Description string `json:"description,omitempty"`
	// Parameters is a JSON Schema object defining the tool parameters.
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

// ToolCall is a request to invoke a tool.
type ToolCall struct {
	// ID is a unique identifier for this tool call (used to match results).
	ID string `json:"id"`
	// Name is the name of the tool to invoke.
	Name string `json:"name"`
	// Arguments is a JSON object string containing the coerced arguments.
	Arguments string `json:"arguments"`
}

// ToolResult is the normalized outcome of a tool call.
type ToolResult struct {
	// ToolCallID matches the ID from the corresponding ToolCall.
	ToolCallID string `json:"toolCallId"`
	// Content is the textual result or fault message.
	Content string `json:"content"`
	// IsError indicates the tool executed but failed.
	IsError bool `json:"isError,omitempty"`
}

// Succeeded reports whether the call completed without a fault.
func (r ToolResult) Succeeded() bool {
	return !r.IsError
}

// ToolLister lists the tools a session offers.
type ToolLister interface {
	ListTools(ctx context.Context) ([]Tool, error)
}

// ToolCaller invokes a tool by name. A returned error is a transport or
// protocol fault; a tool that ran and failed reports IsError instead.
type ToolCaller interface {
	CallTool(ctx context.Context, call ToolCall) (ToolResult, error)
}

// ToolSession is a live connection to a tool-execution service.
type ToolSession interface {
	ToolLister
	ToolCaller
}
