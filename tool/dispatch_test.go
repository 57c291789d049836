package tool

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	ai "github.com/spetersoncode/talk2mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSession struct {
	err   error
	calls int
}

func (s *failingSession) CallTool(context.Context, ai.ToolCall) (ai.ToolResult, error) {
	s.calls++
	return ai.ToolResult{}, s.err
}

type rectArgs struct {
	X1 int `json:"x1" required:"true"`
	Y1 int `json:"y1" required:"true"`
}

func dispatchFixture(t *testing.T, opts ...DispatchOption) (*Dispatcher, *Catalog) {
	t.Helper()
	registry := NewRegistry().Add(
		Func("add", "Add two numbers", func(ctx context.Context, args calcArgs) (string, error) {
			return "FINAL_ANSWER: [" + strconv.Itoa(args.A+args.B) + "]", nil
		}),
		Func("draw_rectangle", "Draw a rectangle", func(ctx context.Context, args rectArgs) (string, error) {
			return "", errors.New("canvas is not open")
		}),
		Func("open_canvas", "Open the canvas", func(ctx context.Context, args struct{}) (string, error) {
			return "canvas opened", nil
		}),
	)
	catalog, err := NewCatalog(registry.Tools())
	require.NoError(t, err)
	return NewDispatcher(catalog, registry, opts...), catalog
}

func TestDispatcherScenario(t *testing.T) {
	dispatcher, catalog := dispatchFixture(t)

	entry, err := catalog.Lookup("add")
	require.NoError(t, err)
	args, err := NewCoercer(nil).Coerce(entry.Schema, map[string]any{"a": "45", "b": "44"}, nil)
	require.NoError(t, err)

	result, err := dispatcher.Invoke(context.Background(), "add", args)
	require.NoError(t, err)
	assert.True(t, result.Succeeded())
	assert.Equal(t, "FINAL_ANSWER: [89]", result.Content)
	assert.Contains(t, result.ToolCallID, "call_")
}

func TestDispatcherFailures(t *testing.T) {
	t.Run("unknown tool", func(t *testing.T) {
		dispatcher, _ := dispatchFixture(t)
		_, err := dispatcher.Invoke(context.Background(), "paint", nil)
		var unknown *UnknownToolError
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("tool error is a failed result", func(t *testing.T) {
		dispatcher, _ := dispatchFixture(t)
		result, err := dispatcher.Invoke(context.Background(), "draw_rectangle", Arguments{"x1": 1, "y1": 2})
		require.NoError(t, err)
		assert.False(t, result.Succeeded())
		assert.Equal(t, "canvas is not open", result.Content)
	})

	t.Run("session fault is a failed result", func(t *testing.T) {
		_, catalog := dispatchFixture(t)
		session := &failingSession{err: errors.New("broken pipe")}
		dispatcher := NewDispatcher(catalog, session)

		result, err := dispatcher.Invoke(context.Background(), "open_canvas", nil)
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "broken pipe", result.Content)
		assert.NotEmpty(t, result.ToolCallID)
		assert.Equal(t, 1, session.calls)
	})
}

func TestDispatcherSettleDelay(t *testing.T) {
	t.Run("waits after stateful tools only", func(t *testing.T) {
		dispatcher, _ := dispatchFixture(t, WithSettleDelay(30*time.Millisecond), WithStatefulTools("open_canvas"))
		assert.True(t, dispatcher.IsStateful("open_canvas"))
		assert.False(t, dispatcher.IsStateful("add"))

		start := time.Now()
		_, err := dispatcher.Invoke(context.Background(), "open_canvas", nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

		start = time.Now()
		_, err = dispatcher.Invoke(context.Background(), "add", Arguments{"a": 1, "b": 2})
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 30*time.Millisecond)
	})

	t.Run("cancellation cuts the wait short", func(t *testing.T) {
		dispatcher, _ := dispatchFixture(t, WithSettleDelay(time.Hour), WithStatefulTools("open_canvas"))
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		result, err := dispatcher.Invoke(ctx, "open_canvas", nil)
		require.NoError(t, err)
		assert.Equal(t, "canvas opened", result.Content)
	})

	t.Run("default delay", func(t *testing.T) {
		dispatcher, catalog := dispatchFixture(t)
		assert.Equal(t, DefaultSettleDelay, dispatcher.settle)
		assert.Same(t, catalog, dispatcher.Catalog())
	})
}
