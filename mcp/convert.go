package mcp

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	ai "github.com/spetersoncode/talk2mcp"
)

// ToMCPTool converts a Tool to an MCP Tool.
// The Tool.Parameters JSON schema is used as the MCP Tool's RawInputSchema.
func ToMCPTool(t ai.Tool) mcp.Tool {
	if len(t.Parameters) == 0 {
		return mcp.NewTool(t.Name, mcp.WithDescription(t.Description))
	}
	return mcp.NewToolWithRawSchema(t.Name, t.Description, t.Parameters)
}

// FromMCPTool converts an MCP Tool to a Tool.
// It extracts the JSON schema from either RawInputSchema or InputSchema.
func FromMCPTool(t mcp.Tool) ai.Tool {
	var schema json.RawMessage
	if len(t.RawInputSchema) > 0 {
		schema = t.RawInputSchema
	} else if data, err := json.Marshal(t.InputSchema); err == nil {
		schema = data
	}

	return ai.Tool{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  schema,
	}
}

// FromMCPTools converts a slice of MCP Tools, keeping their order.
func FromMCPTools(tools []mcp.Tool) []ai.Tool {
	result := make([]ai.Tool, len(tools))
	for i, t := range tools {
		result[i] = FromMCPTool(t)
	}
	return result
}

// ToMCPCallToolRequest converts a ToolCall to an MCP CallToolRequest.
func ToMCPCallToolRequest(call ai.ToolCall) mcp.CallToolRequest {
	var args any = map[string]any{}
	if call.Arguments != "" {
		var decoded any
		if err := json.Unmarshal([]byte(call.Arguments), &decoded); err == nil {
			args = decoded
		} else {
			args = call.Arguments
		}
	}

	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      call.Name,
			Arguments: args,
		},
	}
}

// FromMCPCallToolResult normalizes an MCP result into a ToolResult.
// Only the first content item is used: text yields its text, images and
// audio a short placeholder, anything else its JSON. Structured content is
// used when there is no content at all.
func FromMCPCallToolResult(callID string, result *mcp.CallToolResult) ai.ToolResult {
	if result == nil {
		return ai.ToolResult{ToolCallID: callID, Content: "empty tool result", IsError: true}
	}

	var text string
	switch {
	case len(result.Content) > 0:
		text = contentText(result.Content[0])
	case result.StructuredContent != nil:
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			text = string(data)
		}
	}

	return ai.ToolResult{
		ToolCallID: callID,
		Content:    text,
		IsError:    result.IsError,
	}
}

func contentText(c mcp.Content) string {
	switch content := c.(type) {
	case mcp.TextContent:
		return content.Text
	case *mcp.TextContent:
		return content.Text
	case mcp.ImageContent:
		return "[image " + content.MIMEType + "]"
	case *mcp.ImageContent:
		return "[image " + content.MIMEType + "]"
	case mcp.AudioContent:
		return "[audio " + content.MIMEType + "]"
	case *mcp.AudioContent:
		return "[audio " + content.MIMEType + "]"
	}
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return string(data)
}
