package agent

import "time"

// EventType identifies the kind of event occurring during a run.
type EventType string

const (
	// EventIterationStart fires before each model call.
	EventIterationStart EventType = "iteration_start"

	// EventModelReply fires when the model answered. Message holds the
	// outcome kind.
	EventModelReply EventType = "model_reply"

	// EventToolCall fires before a tool is dispatched.
	EventToolCall EventType = "tool_call"

	// EventToolResult fires after a tool returned. Error is set when the
	// tool failed.
	EventToolResult EventType = "tool_result"

	// EventToolRefused fires when a call targets only completed operations.
	EventToolRefused EventType = "tool_refused"

	// EventFallback fires after a fallback ran. Error is set when it failed.
	EventFallback EventType = "fallback"

	// EventFault fires when the fault counter increments.
	EventFault EventType = "fault"

	// EventAnswer fires when a pending answer is recorded.
	EventAnswer EventType = "answer"

	// EventRunComplete fires once when the run terminates.
	EventRunComplete EventType = "run_complete"
)

// Event represents an observable occurrence during a run.
type Event struct {
	Type EventType

	// TaskID identifies the run.
	TaskID string

	// Iteration is the current iteration number (1-indexed).
	Iteration int

	Operation string
	Tool      string

	// Termination is set on EventRunComplete.
	Termination Termination

	// Duration is the tool call time for EventToolResult and the run time
	// for EventRunComplete.
	Duration time.Duration

	Error   error
	Message string

	Timestamp time.Time
}

// emit sends an event without blocking.
func emit(ch chan<- Event, event Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- event:
	default:
	}
}
