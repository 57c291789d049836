package retry

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	ai "github.com/spetersoncode/talk2mcp"
)

// Class is how a failed attempt is handled.
type Class string

const (
	// ClassPermanent stops retrying immediately.
	ClassPermanent Class = "permanent"
	// ClassTransient retries after an exponential backoff wait.
	ClassTransient Class = "transient"
	// ClassRateLimited retries after the rate-limit cooldown.
	ClassRateLimited Class = "rate_limited"
)

// ExhaustedError is returned when every allowed attempt failed with a
// retryable error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: %d attempts exhausted: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// statusCoder is an interface for errors that have an HTTP status code.
type statusCoder interface {
	StatusCode() int
}

// Classify decides how a failed attempt is handled. Rate limiting is checked
// first because a 429 is also transient but gets its own cooldown.
func Classify(err error) Class {
	if err == nil {
		return ClassPermanent
	}
	if ai.IsRateLimited(err) {
		return ClassRateLimited
	}
	if IsTransient(err) {
		return ClassTransient
	}
	return ClassPermanent
}

// IsTransient determines if an error is transient and should be retried.
// Categorized errors decide for themselves. Otherwise it falls back to
// heuristic detection:
//   - Rate limits (HTTP 429)
//   - Server errors (HTTP 5xx)
//   - Network timeouts and connection resets
//   - Temporary DNS failures
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce ai.CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == ai.ErrorTransient
	}

	var sc statusCoder
	if errors.As(err, &sc) && isTransientStatusCode(sc.StatusCode()) {
		return true
	}

	return isTransientNetworkError(err)
}

func isTransientStatusCode(code int) bool {
	return code == 429 || code == 408 || (code >= 500 && code < 600)
}

func isTransientNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && isTransientNetworkError(urlErr.Err) {
			return true
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ETIMEDOUT:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

var transientPatterns = []string{
	"connection reset",
	"connection refused",
	"timeout",
	"deadline exceeded",
	"temporary failure",
	"service unavailable",
	"server error",
	"bad gateway",
	"gateway timeout",
	"overloaded",
}
