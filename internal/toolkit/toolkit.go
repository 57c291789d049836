// Package toolkit provides the reference tools served by cmd/mcpserver:
// arithmetic and sequence helpers plus an in-memory canvas.
package toolkit

import (
	"encoding/json"
	"strconv"

	"github.com/spetersoncode/talk2mcp/tool"
)

// New returns a registry holding the math tools followed by the canvas
// tools bound to canvas. A nil canvas gets a fresh one.
func New(canvas *Canvas) *tool.Registry {
	if canvas == nil {
		canvas = NewCanvas()
	}
	return tool.NewRegistry().
		Add(MathTools()...).
		Add(canvas.Tools()...)
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
