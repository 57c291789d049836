package talk2mcp

import (
	"math"
	"math/rand"
	"time"
)

// RetryConfig holds the retry policy for model calls.
// Use DefaultRetryConfig() for the standard policy or create custom configs.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (default: 3).
	// The initial request counts as attempt 1.
	MaxAttempts int

	// InitialDelay is the first backoff wait and the floor for every wait (default: 4s).
	InitialDelay time.Duration

	// MaxDelay is the ceiling for every backoff wait (default: 10s).
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier (default: 2.0).
	Multiplier float64

	// Jitter adds randomness to each wait (default: 0).
	// Delay is multiplied by (1 + random(-jitter, +jitter)) and then clamped.
	Jitter float64

	// RateLimitCooldown is the wait after a rate-limit signal (default: 25s).
	// It replaces the backoff wait for that attempt and does not advance
	// the backoff exponent.
	RateLimitCooldown time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
//   - 3 max attempts
//   - 4 second floor, 10 second ceiling
//   - 2x exponential multiplier, no jitter
//   - 25 second rate-limit cooldown
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialDelay:      4 * time.Second,
		MaxDelay:          10 * time.Second,
		Multiplier:        2.0,
		RateLimitCooldown: 25 * time.Second,
	}
}

// DisabledRetryConfig returns a configuration that disables retries (single attempt).
func DisabledRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 1}
}

// Delay calculates the backoff wait for a given backoff step (0-indexed).
// The result always lies within [InitialDelay, MaxDelay] when MaxDelay is set.
func (c RetryConfig) Delay(step int) time.Duration {
	if step < 0 {
		step = 0
	}
	multiplier := c.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	delay := float64(c.InitialDelay) * math.Pow(multiplier, float64(step))
	if c.Jitter > 0 {
		delay *= 1.0 + (rand.Float64()*2-1)*c.Jitter
	}

	if delay < float64(c.InitialDelay) {
		delay = float64(c.InitialDelay)
	}
	if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	return time.Duration(delay)
}

// Cooldown returns the wait after a rate-limited attempt, honoring a larger
// server-supplied Retry-After.
func (c RetryConfig) Cooldown(retryAfter time.Duration) time.Duration {
	if retryAfter > c.RateLimitCooldown {
		return retryAfter
	}
	return c.RateLimitCooldown
}
