package client

import "github.com/spetersoncode/talk2mcp/internal/retry"

// Event is an observable occurrence during a Generate call.
type Event = retry.Event

// EventType identifies the kind of event.
type EventType = retry.EventType

// Event type constants.
const (
	EventAttemptStart  = retry.EventAttemptStart
	EventAttemptFailed = retry.EventAttemptFailed
	EventRetrying      = retry.EventRetrying
	EventCooldown      = retry.EventCooldown
	EventSuccess       = retry.EventSuccess
	EventExhausted     = retry.EventExhausted
)

// Failure classes carried by EventAttemptFailed.
const (
	ClassPermanent   = retry.ClassPermanent
	ClassTransient   = retry.ClassTransient
	ClassRateLimited = retry.ClassRateLimited
)
