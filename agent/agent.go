package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spetersoncode/talk2mcp/plan"
	"github.com/spetersoncode/talk2mcp/reply"
	"github.com/spetersoncode/talk2mcp/tool"
)

// Generator produces the model's reply to a prompt.
// *client.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Agent drives a model through a task plan.
type Agent struct {
	gen        Generator
	catalog    *tool.Catalog
	dispatcher *tool.Dispatcher
	coercer    *tool.Coercer

	maxIterations  int
	faultThreshold int
	logger         *slog.Logger
	events         chan<- Event
	now            func() time.Time
}

// New creates an Agent.
func New(gen Generator, catalog *tool.Catalog, dispatcher *tool.Dispatcher, opts ...Option) *Agent {
	a := &Agent{
		gen:            gen,
		catalog:        catalog,
		dispatcher:     dispatcher,
		maxIterations:  DefaultMaxIterations,
		faultThreshold: DefaultFaultThreshold,
		logger:         slog.New(slog.DiscardHandler),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.coercer = tool.NewCoercer(a.logger)
	return a
}

// Run executes p until it succeeds, reaches the iteration cap, or fails.
// The error is non-nil only when p is missing or invalid; every other
// outcome is reported in the Result.
func (a *Agent) Run(ctx context.Context, p *plan.Plan) (*Result, error) {
	if p == nil {
		return nil, ErrNoPlan
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	r := a.newRun(p)
	a.logger.Info("run started", "task", r.id, "plan", p.Name, "max_iterations", r.maxIterations)

	for r.result == nil {
		r.step(ctx)
	}

	a.logger.Info("run finished",
		"task", r.id,
		"termination", r.result.Termination,
		"reason", r.result.Reason,
		"iterations", r.result.Iterations,
		"answer", r.result.Answer,
	)
	return r.result, nil
}

// run is the mutable state of one Run call.
type run struct {
	*Agent
	id            string
	plan          *plan.Plan
	ledger        *Ledger
	maxIterations int
	started       time.Time

	iteration    int
	history      []string
	lastResult   string
	lastReply    string
	answer       string
	reprompt     bool
	unrecognized int
	faults       int
	failures     map[string]int
	fellBack     map[string]bool

	result *Result
}

func (a *Agent) newRun(p *plan.Plan) *run {
	maxIterations := a.maxIterations
	if p.MaxIterations > 0 {
		maxIterations = p.MaxIterations
	}
	return &run{
		Agent:         a,
		id:            uuid.NewString(),
		plan:          p,
		ledger:        NewLedger(p.Operations),
		maxIterations: maxIterations,
		started:       a.now(),
		failures:      make(map[string]int),
		fellBack:      make(map[string]bool),
	}
}

// step performs one iteration, or terminates the run when a guard fires.
func (r *run) step(ctx context.Context) {
	if r.ledger.Done() {
		r.finish(TerminationSuccess, "all operations completed", nil)
		return
	}
	if err := ctx.Err(); err != nil {
		r.finish(TerminationFatal, "cancelled", errors.Join(ErrCancelled, err))
		return
	}
	if r.iteration >= r.maxIterations {
		r.finish(TerminationIterationCap, fmt.Sprintf("reached the limit of %d iterations", r.maxIterations), nil)
		return
	}

	r.iteration++
	r.emit(Event{Type: EventIterationStart})
	r.logger.Debug("iteration started", "task", r.id, "iteration", r.iteration)

	text, err := r.gen.Generate(ctx, BuildPrompt(r.promptState()))
	if err != nil {
		if ctx.Err() != nil {
			r.finish(TerminationFatal, "cancelled", errors.Join(ErrCancelled, err))
			return
		}
		r.logger.Error("generation failed", "task", r.id, "iteration", r.iteration, "error", err)
		r.finish(TerminationFatal, "generation failed", err)
		return
	}
	r.lastReply = text

	outcome := reply.Parse(text)
	r.emit(Event{Type: EventModelReply, Message: string(outcome.Kind())})
	r.logger.Debug("model replied", "task", r.id, "iteration", r.iteration, "outcome", outcome.Kind())

	if _, ok := outcome.(reply.Unrecognized); !ok {
		r.unrecognized = 0
		r.reprompt = false
	}

	switch o := outcome.(type) {
	case reply.FunctionCall:
		r.handleCall(ctx, o)
	case reply.FinalAnswer:
		r.handleAnswer(o.Value)
	case reply.Error:
		r.fault(o.Description, o.Suggestion, "", "")
	case reply.Complete:
		summary := "model reported completion"
		if o.Summary != "" {
			summary += ": " + o.Summary
		}
		r.narrate(fmt.Sprintf("In iteration %d you reported completion.", r.iteration))
		r.finish(TerminationSuccess, summary, nil)
	case reply.Unrecognized:
		r.handleUnrecognized(o)
	}
}

func (r *run) promptState() PromptState {
	return PromptState{
		Plan:     r.plan,
		Catalog:  r.catalog,
		Ledger:   r.ledger.Entries(),
		Answer:   r.answer,
		History:  r.history,
		Reprompt: r.reprompt,
	}
}

func (r *run) handleCall(ctx context.Context, call reply.FunctionCall) {
	ops := r.plan.OperationsUsing(call.Name)
	owner, hasOwner := r.ledger.FirstPending(ops)
	if len(ops) > 0 && !hasOwner {
		r.refuse(call.Name, ops)
		return
	}

	entry, err := r.catalog.Lookup(call.Name)
	if err != nil {
		r.callFailed(ctx, owner, call.Name, err)
		return
	}
	args, err := r.coercer.Coerce(entry.Schema, call.Arguments, call.Positional)
	if err != nil {
		r.callFailed(ctx, owner, call.Name, err)
		return
	}

	r.emit(Event{Type: EventToolCall, Operation: owner, Tool: call.Name})
	start := r.now()
	result, err := r.dispatcher.Invoke(ctx, call.Name, args)
	if err != nil {
		r.callFailed(ctx, owner, call.Name, err)
		return
	}
	elapsed := r.now().Sub(start)

	r.lastResult = result.Content
	r.narrate(fmt.Sprintf("In iteration %d you called %s with %s parameters, and the function returned %s.",
		r.iteration, call.Name, argsText(args), result.Content))

	if !result.Succeeded() {
		r.emit(Event{
			Type:      EventToolResult,
			Operation: owner,
			Tool:      call.Name,
			Duration:  elapsed,
			Error:     errors.New(result.Content),
			Message:   result.Content,
		})
		r.logger.Warn("tool failed", "task", r.id, "iteration", r.iteration, "tool", call.Name, "operation", owner, "result", result.Content)
		if hasOwner {
			r.failures[owner]++
			r.maybeFallback(ctx, owner)
		}
		return
	}

	r.emit(Event{Type: EventToolResult, Operation: owner, Tool: call.Name, Duration: elapsed, Message: result.Content})
	if !hasOwner {
		return
	}
	if r.ledger.Complete(owner, ViaTool, r.now()) {
		r.logger.Info("operation completed", "task", r.id, "operation", owner, "tool", call.Name)
	}
	if op, ok := r.plan.Operation(owner); ok && op.YieldsAnswer {
		r.recordAnswer(answerFrom(result.Content), owner)
	}
}

// refuse narrates a call whose operations are all resolved. Nothing is
// dispatched.
func (r *run) refuse(name string, ops []string) {
	r.narrate(fmt.Sprintf("In iteration %d you called %s, but the %s operation is already completed, so the call was not executed.",
		r.iteration, name, strings.Join(ops, ", ")))
	r.emit(Event{Type: EventToolRefused, Operation: ops[0], Tool: name})
	r.logger.Info("refused call to completed operation", "task", r.id, "tool", name, "operations", ops)
}

// callFailed handles a call that never reached the tool: an unknown tool or
// arguments that did not coerce.
func (r *run) callFailed(ctx context.Context, owner, name string, err error) {
	r.logger.Warn("tool call rejected", "task", r.id, "iteration", r.iteration, "tool", name, "operation", owner, "error", err)
	if owner != "" {
		r.failures[owner]++
		if r.maybeFallback(ctx, owner) {
			return
		}
	}
	suggestion := "check the tool name and parameter types against the available tools"
	r.fault(fmt.Sprintf("call to %s failed: %v", name, err), suggestion, owner, name)
}

func (r *run) handleAnswer(value string) {
	r.narrate(fmt.Sprintf("In iteration %d you reported the final answer %s.", r.iteration, value))
	r.recordAnswer(value, "")
	for _, op := range r.plan.Operations {
		if op.CompletesOnAnswer && r.ledger.Complete(op.Name, ViaAnswer, r.now()) {
			r.logger.Info("operation completed", "task", r.id, "operation", op.Name, "via", ViaAnswer)
		}
	}
}

func (r *run) recordAnswer(value, operation string) {
	if value == "" {
		return
	}
	r.answer = value
	r.emit(Event{Type: EventAnswer, Operation: operation, Message: value})
	r.logger.Info("answer recorded", "task", r.id, "answer", value)
}

func (r *run) handleUnrecognized(u reply.Unrecognized) {
	r.unrecognized++
	r.reprompt = true
	if r.unrecognized == 1 {
		r.logger.Info("unrecognized reply, re-prompting", "task", r.id, "iteration", r.iteration, "reason", u.Reason)
		return
	}
	r.fault("reply did not match any recognized format ("+u.Reason+")", "reply with FUNCTION_CALL, FINAL_ANSWER, ERROR or COMPLETE", "", "")
}

// fault counts one fault and terminates the run once the threshold is
// exceeded.
func (r *run) fault(description, suggestion, operation, toolName string) {
	r.faults++
	line := fmt.Sprintf("In iteration %d an error occurred: %s.", r.iteration, description)
	if suggestion != "" {
		line += " Suggestion: " + suggestion + "."
	}
	r.narrate(line)
	r.emit(Event{Type: EventFault, Operation: operation, Tool: toolName, Message: description})
	r.logger.Warn("fault recorded", "task", r.id, "iteration", r.iteration, "faults", r.faults, "description", description, "suggestion", suggestion)

	if r.faults > r.faultThreshold {
		r.finish(TerminationFatal, "fault threshold exceeded", &FaultLimitError{
			Faults:    r.faults,
			Threshold: r.faultThreshold,
			Last:      description,
		})
	}
}

func (r *run) narrate(line string) {
	r.history = append(r.history, line)
}

func (r *run) emit(e Event) {
	e.TaskID = r.id
	e.Iteration = r.iteration
	e.Timestamp = r.now()
	emit(r.events, e)
}

func (r *run) finish(t Termination, reason string, err error) {
	finished := r.now()
	res := &Result{
		TaskID:      r.id,
		Plan:        r.plan.Name,
		Query:       r.plan.Query,
		Termination: t,
		Reason:      reason,
		Iterations:  r.iteration,
		Answer:      r.answer,
		Ledger:      r.ledger.Entries(),
		History:     append([]string(nil), r.history...),
		Faults:      r.faults,
		Err:         err,
		StartedAt:   r.started,
		FinishedAt:  finished,
	}
	if err != nil {
		res.Error = err.Error()
	}
	r.result = res
	r.emit(Event{
		Type:        EventRunComplete,
		Termination: t,
		Duration:    finished.Sub(r.started),
		Error:       err,
		Message:     reason,
	})
}

func argsText(args tool.Arguments) string {
	s, err := args.JSON()
	if err != nil {
		return fmt.Sprint(map[string]any(args))
	}
	return s
}

// answerFrom extracts the answer a tool result carries. A result written as
// FINAL_ANSWER contributes its value, anything else its trimmed text.
func answerFrom(content string) string {
	if fa, ok := reply.Parse(content).(reply.FinalAnswer); ok {
		return fa.Value
	}
	return strings.TrimSpace(content)
}
