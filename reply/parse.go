package reply

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Reply markers. A reply is classified by the first line that starts with
// one of FUNCTION_CALL, FINAL_ANSWER, ERROR or COMPLETE.
const (
	MarkerFunctionCall = "FUNCTION_CALL:"
	MarkerFinalAnswer  = "FINAL_ANSWER:"
	MarkerError        = "ERROR:"
	MarkerSuggestion   = "SUGGESTION:"
	MarkerComplete     = "COMPLETE:"
)

var markers = []string{MarkerFunctionCall, MarkerFinalAnswer, MarkerError, MarkerComplete}

// Parse classifies a model reply. It is total: every input yields exactly one
// non-nil Outcome.
func Parse(text string) Outcome {
	body := stripFence(strings.TrimSpace(text))
	if body == "" {
		return Unrecognized{Raw: text, Reason: "empty reply"}
	}

	lines := strings.Split(body, "\n")
	if idx, marker := leadingMarker(lines); idx >= 0 {
		rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[idx]), marker))

		switch marker {
		case MarkerFunctionCall:
			payload := rest
			if tail := lines[idx+1:]; len(tail) > 0 {
				payload = rest + "\n" + strings.Join(tail, "\n")
			}
			return parseFunctionCall(text, payload)

		case MarkerFinalAnswer:
			value := rest
			if inner, ok := firstBracketed(rest); ok {
				value = inner
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return Unrecognized{Raw: text, Reason: "final answer without a value"}
			}
			return FinalAnswer{Value: value}

		case MarkerError:
			out := Error{Description: unbracket(rest)}
			if s := markerLine(lines[idx+1:], MarkerSuggestion); s >= 0 {
				line := strings.TrimSpace(lines[idx+1+s])
				out.Suggestion = unbracket(strings.TrimSpace(strings.TrimPrefix(line, MarkerSuggestion)))
			}
			return out

		case MarkerComplete:
			return Complete{Summary: unbracket(rest)}
		}
	}

	return Unrecognized{Raw: text, Reason: "no reply marker"}
}

type callPayload struct {
	Function   string          `json:"function"`
	Parameters json.RawMessage `json:"parameters"`
}

func parseFunctionCall(raw, payload string) Outcome {
	payload = stripFence(strings.TrimSpace(payload))
	if payload == "" {
		return Unrecognized{Raw: raw, Reason: "function call without payload"}
	}

	var call callPayload
	dec := json.NewDecoder(strings.NewReader(payload))
	if err := dec.Decode(&call); err != nil {
		return Unrecognized{Raw: raw, Reason: "function call payload is not JSON: " + err.Error()}
	}
	name := strings.TrimSpace(call.Function)
	if name == "" {
		return Unrecognized{Raw: raw, Reason: "function call without a function name"}
	}

	out := FunctionCall{Name: name, Arguments: map[string]any{}}
	params := bytes.TrimSpace(call.Parameters)
	if len(params) == 0 || bytes.Equal(params, []byte("null")) {
		return out
	}

	var value any
	pdec := json.NewDecoder(bytes.NewReader(params))
	pdec.UseNumber()
	if err := pdec.Decode(&value); err != nil {
		return Unrecognized{Raw: raw, Reason: "function call parameters are not JSON: " + err.Error()}
	}

	switch v := value.(type) {
	case map[string]any:
		out.Arguments = v
	case []any:
		out.Positional = v
	default:
		return Unrecognized{Raw: raw, Reason: "function call parameters must be an object or an array"}
	}
	return out
}

// leadingMarker returns the first line, in document order, that starts with
// a reply marker, and the marker it starts with. It returns -1 when no line
// carries one.
func leadingMarker(lines []string) (int, string) {
	for i, line := range lines {
		line = strings.TrimSpace(line)
		for _, marker := range markers {
			if strings.HasPrefix(line, marker) {
				return i, marker
			}
		}
	}
	return -1, ""
}

// markerLine returns the index of the first line starting with marker, or -1.
func markerLine(lines []string, marker string) int {
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), marker) {
			return i
		}
	}
	return -1
}

// stripFence removes a markdown code fence wrapping the whole text.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the info string (```json).
		if info := strings.TrimSpace(s[:nl]); !strings.ContainsAny(info, "{[:") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func unbracket(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") && strings.Count(s, "[") == 1 {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func firstBracketed(s string) (string, bool) {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		return "", false
	}
	end := strings.IndexByte(s[open+1:], ']')
	if end < 0 {
		return "", false
	}
	return s[open+1 : open+1+end], true
}

// ExtractBracketed returns the last non-empty [value] in text. It is used to
// recover an answer from earlier replies and tool results.
func ExtractBracketed(text string) (string, bool) {
	for end := strings.LastIndexByte(text, ']'); end > 0; end = strings.LastIndexByte(text[:end], ']') {
		open := strings.LastIndexByte(text[:end], '[')
		if open < 0 {
			return "", false
		}
		if value := strings.TrimSpace(text[open+1 : end]); value != "" {
			return value, true
		}
	}
	return "", false
}
