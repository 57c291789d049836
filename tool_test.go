package talk2mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolResultSucceeded(t *testing.T) {
	assert.True(t, ToolResult{Content: "89"}.Succeeded())
	assert.False(t, ToolResult{Content: "canvas is not open", IsError: true}.Succeeded())
}

func TestToolJSON(t *testing.T) {
	t.Run("tool keeps raw schema", func(t *testing.T) {
		tool := Tool{
			Name:        "add",
			Description: "Add two numbers",
			Parameters:  json.RawMessage(`{"type":"object","properties":{"a":{"type":"integer"}}}`),
		}

		data, err := json.Marshal(tool)
		require.NoError(t, err)

		var decoded Tool
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, tool.Name, decoded.Name)
		assert.JSONEq(t, string(tool.Parameters), string(decoded.Parameters))
	})

	t.Run("result omits false error flag", func(t *testing.T) {
		data, err := json.Marshal(ToolResult{ToolCallID: "call_1", Content: "ok"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"toolCallId":"call_1","content":"ok"}`, string(data))
	})
}
