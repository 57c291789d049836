package agent

import (
	"log/slog"
	"time"
)

const (
	// DefaultMaxIterations caps the model calls of one run.
	DefaultMaxIterations = 7

	// DefaultFaultThreshold is the number of faults a run tolerates. The
	// next one is fatal.
	DefaultFaultThreshold = 2
)

// Option configures an Agent.
type Option func(*Agent)

// WithMaxIterations sets the iteration cap used when a plan sets none.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithFaultThreshold sets how many faults a run tolerates.
func WithFaultThreshold(n int) Option {
	return func(a *Agent) {
		if n >= 0 {
			a.faultThreshold = n
		}
	}
}

// WithLogger sets the logger for state transitions, faults and fallbacks.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithEvents sets a channel that receives run events.
// Events are sent non-blocking; if the channel is full, events are dropped.
func WithEvents(ch chan<- Event) Option {
	return func(a *Agent) {
		a.events = ch
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) {
		if now != nil {
			a.now = now
		}
	}
}
