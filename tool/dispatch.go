package tool

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	ai "github.com/spetersoncode/talk2mcp"
)

// DefaultSettleDelay is the wait after a stateful tool call.
const DefaultSettleDelay = 2 * time.Second

// Dispatcher invokes catalog tools through a tool session and normalizes
// every outcome into an ai.ToolResult.
type Dispatcher struct {
	catalog  *Catalog
	session  ai.ToolCaller
	settle   time.Duration
	stateful map[string]bool
	logger   *slog.Logger
	newID    func() string
}

// DispatchOption configures a Dispatcher.
type DispatchOption func(*Dispatcher)

// WithSettleDelay sets the wait applied after stateful tools return.
func WithSettleDelay(d time.Duration) DispatchOption {
	return func(disp *Dispatcher) {
		if d >= 0 {
			disp.settle = d
		}
	}
}

// WithStatefulTools marks tools that change external state.
func WithStatefulTools(names ...string) DispatchOption {
	return func(d *Dispatcher) {
		for _, n := range names {
			d.stateful[n] = true
		}
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(l *slog.Logger) DispatchOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a Dispatcher over catalog and session.
func NewDispatcher(catalog *Catalog, session ai.ToolCaller, opts ...DispatchOption) *Dispatcher {
	d := &Dispatcher{
		catalog:  catalog,
		session:  session,
		settle:   DefaultSettleDelay,
		stateful: make(map[string]bool),
		logger:   slog.New(slog.DiscardHandler),
		newID:    func() string { return "call_" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Catalog returns the catalog the dispatcher resolves names against.
func (d *Dispatcher) Catalog() *Catalog { return d.catalog }

// IsStateful reports whether name is followed by a settle delay.
func (d *Dispatcher) IsStateful(name string) bool { return d.stateful[name] }

// Invoke calls name with args. The only error returned is *UnknownToolError;
// session faults and tool failures come back as a result with IsError set.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args Arguments) (ai.ToolResult, error) {
	if _, err := d.catalog.Lookup(name); err != nil {
		return ai.ToolResult{}, err
	}

	call := ai.ToolCall{ID: d.newID(), Name: name}
	payload, err := args.JSON()
	if err != nil {
		return ai.ToolResult{ToolCallID: call.ID, Content: "encode arguments: " + err.Error(), IsError: true}, nil
	}
	call.Arguments = payload

	start := time.Now()
	result, err := d.session.CallTool(ctx, call)
	if err != nil {
		d.logger.Warn("tool call failed", "tool", name, "id", call.ID, "error", err)
		result = ai.ToolResult{ToolCallID: call.ID, Content: err.Error(), IsError: true}
	} else if result.IsError {
		d.logger.Warn("tool reported an error", "tool", name, "id", call.ID, "result", result.Content)
	}
	if result.ToolCallID == "" {
		result.ToolCallID = call.ID
	}
	d.logger.Debug("tool call finished", "tool", name, "id", call.ID, "duration", time.Since(start))

	if d.stateful[name] && d.settle > 0 {
		d.logger.Debug("waiting for tool to settle", "tool", name, "delay", d.settle)
		timer := time.NewTimer(d.settle)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}
	return result, nil
}
