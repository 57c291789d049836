package retry

import (
	"context"
	"time"

	ai "github.com/spetersoncode/talk2mcp"
)

// backoffDelay returns the wait for a transient failure. A server
// Retry-After is honored when larger but never past the ceiling.
func backoffDelay(cfg Config, step int, err error) time.Duration {
	delay := cfg.Delay(step)
	if server := ai.RetryAfterOf(err); server > delay {
		delay = server
	}
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}

// Do executes fn with retry logic.
// See DoWithEvents for the policy.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	return DoWithEvents(ctx, cfg, nil, fn)
}

// DoWithEvents executes fn up to cfg.MaxAttempts times and emits events for
// observability. Events are sent non-blocking; pass nil to disable them.
//
// Permanent failures return immediately with the original error.
// Transient failures wait cfg.Delay(step), where step only advances on
// transient failures. Rate-limited failures wait the cooldown instead.
// When every attempt fails the result is an *ExhaustedError wrapping the
// last failure. Cancellation of ctx during a wait returns ctx.Err().
func DoWithEvents[T any](ctx context.Context, cfg Config, events chan<- Event, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	step := 0

	for attempt := 0; attempt < maxAttempts; attempt++ {
		emit(events, Event{Type: EventAttemptStart, Attempt: attempt + 1, MaxAttempts: maxAttempts})

		result, err := fn()
		if err == nil {
			emit(events, Event{Type: EventSuccess, Attempt: attempt + 1, MaxAttempts: maxAttempts})
			return result, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		lastErr = err
		class := Classify(err)
		emit(events, Event{
			Type:        EventAttemptFailed,
			Attempt:     attempt + 1,
			MaxAttempts: maxAttempts,
			Error:       err,
			Class:       class,
		})

		if class == ClassPermanent {
			return zero, err
		}
		if attempt == maxAttempts-1 {
			break
		}

		var delay time.Duration
		eventType := EventRetrying
		if class == ClassRateLimited {
			delay = cfg.Cooldown(ai.RetryAfterOf(err))
			eventType = EventCooldown
		} else {
			delay = backoffDelay(cfg, step, err)
			step++
		}

		emit(events, Event{
			Type:        eventType,
			Attempt:     attempt + 1,
			MaxAttempts: maxAttempts,
			Class:       class,
			Delay:       delay,
		})

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	emit(events, Event{
		Type:        EventExhausted,
		Attempt:     maxAttempts,
		MaxAttempts: maxAttempts,
		Error:       lastErr,
	})
	return zero, &ExhaustedError{Attempts: maxAttempts, Err: lastErr}
}
