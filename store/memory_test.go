package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runAdapterContract exercises the behavior every Adapter shares.
func runAdapterContract(t *testing.T, adapter Adapter) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		raw, ok, err := adapter.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, raw)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, adapter.Set(ctx, "k1", json.RawMessage(`{"answer":"89"}`)))
		raw, ok, err := adapter.Get(ctx, "k1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `{"answer":"89"}`, string(raw))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, adapter.Set(ctx, "k1", json.RawMessage(`{"answer":"90"}`)))
		raw, _, err := adapter.Get(ctx, "k1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"answer":"90"}`, string(raw))
	})

	t.Run("keys", func(t *testing.T) {
		require.NoError(t, adapter.Set(ctx, "k2", json.RawMessage(`1`)))
		keys, err := adapter.Keys(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"k1", "k2"}, keys)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, adapter.Delete(ctx, "k1"))
		require.NoError(t, adapter.Delete(ctx, "never-set"))

		_, ok, err := adapter.Get(ctx, "k1")
		require.NoError(t, err)
		assert.False(t, ok)

		keys, err := adapter.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"k2"}, keys)
	})
}

func TestMemoryAdapter(t *testing.T) {
	runAdapterContract(t, NewMemoryAdapter())
}

func TestMemoryAdapter_CopiesValues(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter()

	value := json.RawMessage(`"abc"`)
	require.NoError(t, adapter.Set(ctx, "k", value))
	value[1] = 'z'

	raw, _, err := adapter.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(raw))
}

func TestMemoryAdapter_Concurrent(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("key%d", i)
			_ = adapter.Set(ctx, key, json.RawMessage(`true`))
			_, _, _ = adapter.Get(ctx, key)
			_, _ = adapter.Keys(ctx)
		}()
	}
	wg.Wait()

	keys, err := adapter.Keys(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 50)
}
