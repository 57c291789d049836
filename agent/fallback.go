package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/spetersoncode/talk2mcp/plan"
	"github.com/spetersoncode/talk2mcp/reply"
)

// maybeFallback runs the fallback registered for operation once its failure
// count is reached. It reports whether a fallback call succeeded.
func (r *run) maybeFallback(ctx context.Context, operation string) bool {
	fb, ok := r.plan.FallbackFor(operation)
	if !ok || r.fellBack[operation] || r.failures[operation] < fb.AfterFailures {
		return false
	}
	r.fellBack[operation] = true

	err := r.applyFallback(ctx, operation, fb)
	if err != nil {
		r.narrate(fmt.Sprintf("In iteration %d the fallback for the %s operation failed: %v.", r.iteration, operation, err))
		r.emit(Event{Type: EventFallback, Operation: operation, Tool: fb.Call.Tool, Error: err})
		r.logger.Warn("fallback failed", "task", r.id, "operation", operation, "tool", fb.Call.Tool, "error", err)
		return false
	}
	return true
}

func (r *run) applyFallback(ctx context.Context, operation string, fb plan.Fallback) error {
	target := fb.Target()
	if !r.ledger.IsPending(target) {
		r.ledger.Skip(operation, ViaFallback, r.now())
		r.narrate(fmt.Sprintf("In iteration %d the %s operation failed %d times, but the %s operation is already resolved, so the %s operation was skipped and %s was not called.",
			r.iteration, operation, r.failures[operation], target, operation, fb.Call.Tool))
		r.emit(Event{Type: EventFallback, Operation: operation, Message: "target already resolved"})
		r.logger.Info("fallback target already resolved", "task", r.id, "operation", operation, "target", target)
		return nil
	}

	answer, source := r.recoverAnswer()
	if source == "" {
		r.logger.Warn("fallback has no known answer", "task", r.id, "operation", operation)
	} else {
		r.logger.Info("recovered answer for fallback", "task", r.id, "operation", operation, "answer", answer, "source", source)
	}

	raw, err := fb.Call.Render(plan.TemplateData{Answer: answer})
	if err != nil {
		return fmt.Errorf("render arguments: %w", err)
	}
	entry, err := r.catalog.Lookup(fb.Call.Tool)
	if err != nil {
		return err
	}
	args, err := r.coercer.Coerce(entry.Schema, raw, nil)
	if err != nil {
		return err
	}

	r.emit(Event{Type: EventToolCall, Operation: target, Tool: fb.Call.Tool, Message: "fallback"})
	result, err := r.dispatcher.Invoke(ctx, fb.Call.Tool, args)
	if err != nil {
		return err
	}
	r.lastResult = result.Content
	if !result.Succeeded() {
		return errors.New(result.Content)
	}

	now := r.now()
	completed := r.ledger.Complete(target, ViaFallback, now)
	skipped := target != operation && r.ledger.Skip(operation, ViaFallback, now)

	r.narrate(fmt.Sprintf("In iteration %d the %s operation failed %d times, so the fallback called %s with %s parameters, and the function returned %s.",
		r.iteration, operation, r.failures[operation], fb.Call.Tool, argsText(args), result.Content))
	switch {
	case completed && skipped:
		r.narrate(fmt.Sprintf("The %s operation was skipped and the %s operation was completed by the fallback.", operation, target))
	case completed:
		r.narrate(fmt.Sprintf("The %s operation was completed by the fallback.", target))
	case skipped:
		r.narrate(fmt.Sprintf("The %s operation was skipped by the fallback.", operation))
	}
	r.emit(Event{Type: EventFallback, Operation: operation, Tool: fb.Call.Tool, Message: result.Content})
	r.logger.Info("fallback applied", "task", r.id, "operation", operation, "target", target, "tool", fb.Call.Tool)
	return nil
}

// recoverAnswer returns the best known answer and where it came from: the
// pending answer, then a bracketed value in the last tool result, then one
// in the last model reply. This is best effort.
func (r *run) recoverAnswer() (answer, source string) {
	if r.answer != "" {
		return r.answer, "pending answer"
	}
	if v, ok := reply.ExtractBracketed(r.lastResult); ok {
		return v, "last tool result"
	}
	if v, ok := reply.ExtractBracketed(r.lastReply); ok {
		return v, "last model reply"
	}
	return "", ""
}
