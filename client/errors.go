package client

import (
	"context"
	"errors"
	"fmt"

	ai "github.com/spetersoncode/talk2mcp"
	"github.com/spetersoncode/talk2mcp/internal/retry"
)

// Kind classifies a generation failure.
type Kind string

const (
	// KindTimeout is a single attempt that ran past Config.Timeout.
	KindTimeout Kind = "timeout"
	// KindRateLimited is a single attempt refused by the provider's quota.
	KindRateLimited Kind = "rate_limited"
	// KindExhausted means every attempt failed with a retryable error.
	KindExhausted Kind = "exhausted"
	// KindFault is a permanent provider error.
	KindFault Kind = "fault"
)

// GenerationError is returned by Generate when no text could be produced.
type GenerationError struct {
	Kind Kind
	// Last classifies the final failed attempt. For KindExhausted it is
	// KindTimeout, KindRateLimited or KindFault.
	Last     Kind
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Kind == KindExhausted {
		return fmt.Sprintf("generation %s after %d attempts (last: %s): %v", e.Kind, e.Attempts, e.Last, e.Err)
	}
	return fmt.Sprintf("generation %s: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ErrMissingAPIKey is returned by New when the selected provider needs an
// API key and none is configured.
type ErrMissingAPIKey struct {
	Provider string
	Model    string
}

func (e *ErrMissingAPIKey) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("no API key configured for %s (required by model %q)", e.Provider, e.Model)
	}
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// errAttemptTimeout marks an attempt that hit its own deadline.
var errAttemptTimeout = errors.New("attempt deadline exceeded")

func newTimeoutError(cause error) error {
	return ai.NewTransientError("generation timed out", 0, errors.Join(errAttemptTimeout, cause))
}

// kindOf classifies a single failed attempt.
func kindOf(err error) Kind {
	switch {
	case errors.Is(err, errAttemptTimeout):
		return KindTimeout
	case retry.Classify(err) == retry.ClassRateLimited:
		return KindRateLimited
	default:
		return KindFault
	}
}

// wrapFailure converts the result of the retry loop into the error Generate
// returns.
func wrapFailure(ctx context.Context, err error, attempts int) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		return &GenerationError{
			Kind:     KindExhausted,
			Last:     kindOf(exhausted.Err),
			Attempts: exhausted.Attempts,
			Err:      exhausted.Err,
		}
	}
	return &GenerationError{Kind: KindFault, Last: KindFault, Attempts: attempts, Err: err}
}
