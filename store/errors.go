package store

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested key does not exist or has expired.
var ErrNotFound = errors.New("store: not found")

// SerializationError wraps JSON marshaling/unmarshaling errors with context.
type SerializationError struct {
	Key string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("store: serialization error for key %q: %v", e.Key, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
