package store

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
)

// Collection stores values of one type as JSON under string ids.
type Collection[T any] struct {
	adapter Adapter
}

// NewCollection creates a collection over adapter. A nil adapter means a
// new MemoryAdapter.
func NewCollection[T any](adapter Adapter) *Collection[T] {
	if adapter == nil {
		adapter = NewMemoryAdapter()
	}
	return &Collection[T]{adapter: adapter}
}

// Save stores value under id, replacing any previous value.
func (c *Collection[T]) Save(ctx context.Context, id string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return &SerializationError{Key: id, Err: err}
	}
	return c.adapter.Set(ctx, id, raw)
}

// Load returns the value stored under id, or ErrNotFound.
func (c *Collection[T]) Load(ctx context.Context, id string) (T, error) {
	var value T
	raw, ok, err := c.adapter.Get(ctx, id)
	if err != nil {
		return value, err
	}
	if !ok {
		return value, ErrNotFound
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, &SerializationError{Key: id, Err: err}
	}
	return value, nil
}

// List returns every stored value ordered by id. Values that vanish between
// listing and loading are skipped.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	ids, err := c.adapter.Keys(ctx)
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)

	values := make([]T, 0, len(ids))
	for _, id := range ids {
		v, err := c.Load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Delete removes the value stored under id.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.adapter.Delete(ctx, id)
}

// Adapter returns the underlying adapter.
func (c *Collection[T]) Adapter() Adapter {
	return c.adapter
}
