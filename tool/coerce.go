package tool

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Arguments are coerced tool arguments keyed by parameter name.
type Arguments map[string]any

// JSON encodes the arguments for a tool call.
func (a Arguments) JSON() (string, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(map[string]any(a))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Coercer converts untrusted argument values to the types a tool's schema
// declares. Array values are only ever decoded as JSON.
type Coercer struct {
	logger *slog.Logger
}

// NewCoercer returns a Coercer that logs ignored arguments to logger.
// A nil logger discards.
func NewCoercer(logger *slog.Logger) *Coercer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coercer{logger: logger}
}

// Coerce reads every parameter in schema from named, or from positional in
// declaration order when named is empty, and converts it to the declared
// type. A missing required parameter or a value of the wrong shape returns a
// *CoercionError naming the parameter. Unknown named arguments and surplus
// positional values are ignored and logged.
func (c *Coercer) Coerce(schema Schema, named map[string]any, positional []any) (Arguments, error) {
	raw := named
	if len(named) == 0 && len(positional) > 0 {
		raw = make(map[string]any, len(positional))
		for i, v := range positional {
			if i >= len(schema) {
				c.logger.Warn("ignoring surplus positional arguments",
					"declared", len(schema), "received", len(positional))
				break
			}
			raw[schema[i].Name] = v
		}
	} else if len(positional) > 0 {
		c.logger.Warn("ignoring positional arguments alongside named ones", "count", len(positional))
	}

	out := make(Arguments, len(schema))
	for _, p := range schema {
		v, ok := raw[p.Name]
		if !ok || v == nil {
			if p.Required {
				return nil, &CoercionError{Parameter: p.Name, Reason: "missing required parameter"}
			}
			continue
		}
		coerced, err := coerceValue(p.Type, v)
		if err != nil {
			return nil, &CoercionError{Parameter: p.Name, Reason: err.Error()}
		}
		out[p.Name] = coerced
	}

	for name := range raw {
		if _, declared := schema.Param(name); !declared {
			c.logger.Warn("ignoring unknown argument", "argument", name)
		}
	}
	return out, nil
}

func coerceValue(typ string, v any) (any, error) {
	switch typ {
	case TypeInteger:
		return toInteger(v)
	case TypeNumber:
		return toNumber(v)
	case TypeBoolean:
		return toBoolean(v)
	case TypeArray:
		return toArray(v)
	default:
		return v, nil
	}
}

func toInteger(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return integral(n)
	case json.Number:
		return parseInteger(string(n))
	case string:
		return parseInteger(n)
	}
	return 0, fmt.Errorf("expected integer, got %T", v)
}

// parseInteger accepts plain decimal text, optionally with a fraction of
// zeros such as "45.0". Exponent and hex forms are rejected.
func parseInteger(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	whole, frac, ok := strings.Cut(s, ".")
	if !ok || frac == "" || strings.Trim(frac, "0") != "" {
		return 0, fmt.Errorf("expected integer, got %q", s)
	}
	i, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected integer, got %q", s)
	}
	return i, nil
}

// integral accepts floats with no fractional part, such as 45.0.
func integral(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("expected integer, got %v", f)
	}
	return int64(f), nil
}

func toNumber(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		f = n
	case json.Number:
		parsed, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", string(n))
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", n)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected finite number, got %v", f)
	}
	return f, nil
}

func toBoolean(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, fmt.Errorf("expected boolean, got %q", b)
		}
		return parsed, nil
	case json.Number:
		parsed, err := strconv.ParseBool(string(b))
		if err != nil {
			return false, fmt.Errorf("expected boolean, got %s", string(b))
		}
		return parsed, nil
	}
	return false, fmt.Errorf("expected boolean, got %T", v)
}

// toArray accepts a JSON array value or text that decodes as exactly one
// JSON array. Nothing else is interpreted.
func toArray(v any) ([]any, error) {
	switch a := v.(type) {
	case []any:
		return a, nil
	case string:
		dec := json.NewDecoder(strings.NewReader(a))
		dec.UseNumber()
		var out []any
		if err := dec.Decode(&out); err != nil || out == nil {
			return nil, fmt.Errorf("expected JSON array, got %q", a)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("expected JSON array, got trailing data in %q", a)
		}
		return out, nil
	case json.RawMessage:
		return toArray(string(bytes.TrimSpace(a)))
	}
	return nil, fmt.Errorf("expected array, got %T", v)
}
