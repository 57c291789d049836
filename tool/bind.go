package tool

import (
	"context"
	"encoding/json"
	"fmt"

	ai "github.com/spetersoncode/talk2mcp"
)

// Bind creates a Tool and Handler from a typed function.
// The JSON schema for tool parameters is generated from struct tags on T,
// with properties in field declaration order.
//
// Example:
//
//	type RectArgs struct {
//	    X1 int `json:"x1" desc:"Left edge" required:"true"`
//	    Y1 int `json:"y1" desc:"Top edge" required:"true"`
//	}
//
//	t, h, err := tool.Bind("draw_rectangle", "Draw a rectangle",
//	    func(ctx context.Context, args RectArgs) (string, error) {
//	        return canvas.Rect(args.X1, args.Y1), nil
//	    })
func Bind[T any](name, description string, fn TypedHandler[T]) (ai.Tool, Handler, error) {
	schema, err := ai.SchemaFor[T]()
	if err != nil {
		return ai.Tool{}, nil, err
	}

	t := ai.Tool{
		Name:        name,
		Description: description,
		Parameters:  schema,
	}
	return t, typed(fn), nil
}

// MustBind is like Bind but panics on error.
func MustBind[T any](name, description string, fn TypedHandler[T]) (ai.Tool, Handler) {
	t, h, err := Bind(name, description, fn)
	if err != nil {
		panic(err)
	}
	return t, h
}

// BindTo creates a tool from a typed function and registers it directly to a Registry.
func BindTo[T any](r *Registry, name, description string, fn TypedHandler[T]) error {
	t, h, err := Bind(name, description, fn)
	if err != nil {
		return err
	}
	return r.Register(t, h)
}

func typed[T any](fn TypedHandler[T]) Handler {
	return func(ctx context.Context, call ai.ToolCall) (string, error) {
		var args T
		if call.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
				return "", fmt.Errorf("decode arguments: %w", err)
			}
		}
		return fn(ctx, args)
	}
}
