// Package metrics exposes Prometheus counters for agent runs and model
// generation attempts. A Recorder translates agent and client events into
// metric updates.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spetersoncode/talk2mcp/agent"
	"github.com/spetersoncode/talk2mcp/client"
)

const namespace = "talk2mcp"

// Tool call outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeRefused = "refused"
)

// Recorder holds the collectors for one registry.
type Recorder struct {
	iterations   prometheus.Counter
	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	faults       prometheus.Counter
	fallbacks    *prometheus.CounterVec
	runs         *prometheus.CounterVec
	attempts     *prometheus.CounterVec
	cooldowns    prometheus.Counter
}

// NewRecorder creates the collectors and registers them with reg. A nil
// reg uses the default registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Total number of agent loop iterations",
		}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of tool calls by outcome",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Duration of tool executions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		faults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_total",
			Help:      "Total number of faults counted against runs",
		}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Total number of fallbacks by failed operation and outcome",
		}, []string{"operation", "outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of finished runs by termination",
		}, []string{"termination"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_attempts_total",
			Help:      "Total number of model generation attempts by outcome",
		}, []string{"outcome"}),
		cooldowns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_cooldowns_total",
			Help:      "Total number of rate-limit cooldown waits",
		}),
	}
	reg.MustRegister(
		r.iterations, r.toolCalls, r.toolDuration, r.faults,
		r.fallbacks, r.runs, r.attempts, r.cooldowns,
	)
	return r
}

// ObserveAgent records one agent event.
func (r *Recorder) ObserveAgent(e agent.Event) {
	switch e.Type {
	case agent.EventIterationStart:
		r.iterations.Inc()
	case agent.EventToolResult:
		outcome := OutcomeOK
		if e.Error != nil {
			outcome = OutcomeError
		}
		r.toolCalls.WithLabelValues(e.Tool, outcome).Inc()
		r.toolDuration.WithLabelValues(e.Tool).Observe(e.Duration.Seconds())
	case agent.EventToolRefused:
		r.toolCalls.WithLabelValues(e.Tool, OutcomeRefused).Inc()
	case agent.EventFault:
		r.faults.Inc()
	case agent.EventFallback:
		outcome := OutcomeOK
		if e.Error != nil {
			outcome = OutcomeError
		}
		r.fallbacks.WithLabelValues(e.Operation, outcome).Inc()
	case agent.EventRunComplete:
		r.runs.WithLabelValues(string(e.Termination)).Inc()
	}
}

// ObserveClient records one generation event.
func (r *Recorder) ObserveClient(e client.Event) {
	switch e.Type {
	case client.EventSuccess:
		r.attempts.WithLabelValues(OutcomeOK).Inc()
	case client.EventAttemptFailed:
		r.attempts.WithLabelValues(OutcomeError).Inc()
	case client.EventCooldown:
		r.cooldowns.Inc()
	}
}

// Consume observes agent events until ch closes or ctx is done.
func (r *Recorder) Consume(ctx context.Context, ch <-chan agent.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			r.ObserveAgent(e)
		}
	}
}

// ConsumeClient observes generation events until ch closes or ctx is done.
func (r *Recorder) ConsumeClient(ctx context.Context, ch <-chan client.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			r.ObserveClient(e)
		}
	}
}
