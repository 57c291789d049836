package retry

import ai "github.com/spetersoncode/talk2mcp"

// Config is the retry policy. It is defined in the root package so callers
// can configure it without importing an internal package.
type Config = ai.RetryConfig

// DefaultConfig returns the default retry configuration.
func DefaultConfig() Config {
	return ai.DefaultRetryConfig()
}

// Disabled returns a configuration that disables retries (single attempt).
func Disabled() Config {
	return ai.DisabledRetryConfig()
}
