package reply

import (
	"encoding/json"
)

// FormatFunctionCall renders a FUNCTION_CALL line in compact JSON.
// Positional arguments are used when named is empty.
func FormatFunctionCall(name string, named map[string]any, positional []any) string {
	var params any = named
	if len(named) == 0 && len(positional) > 0 {
		params = positional
	}
	if params == nil {
		params = map[string]any{}
	}

	payload, err := json.Marshal(struct {
		Function   string `json:"function"`
		Parameters any    `json:"parameters"`
	}{name, params})
	if err != nil {
		return MarkerFunctionCall + ` {"function":"` + name + `","parameters":{}}`
	}
	return MarkerFunctionCall + " " + string(payload)
}
