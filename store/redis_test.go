package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisAdapter(t *testing.T, opts ...RedisOption) (*RedisAdapter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisAdapter(client, opts...), mr
}

func TestRedisAdapter(t *testing.T) {
	adapter, _ := newRedisAdapter(t)
	runAdapterContract(t, adapter)
}

func TestRedisAdapter_Prefix(t *testing.T) {
	adapter, mr := newRedisAdapter(t, WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "run-1", json.RawMessage(`{}`)))

	assert.True(t, mr.Exists("test:run-1"))
	assert.True(t, mr.Exists("test:index"))
	members, err := mr.ZMembers("test:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1"}, members)
}

func TestRedisAdapter_DefaultPrefix(t *testing.T) {
	adapter, mr := newRedisAdapter(t)
	require.NoError(t, adapter.Set(context.Background(), "run-1", json.RawMessage(`{}`)))
	assert.True(t, mr.Exists(DefaultRedisPrefix+"run-1"))
}

func TestRedisAdapter_TTL(t *testing.T) {
	adapter, mr := newRedisAdapter(t, WithTTL(time.Hour))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	adapter.now = func() time.Time { return now }

	require.NoError(t, adapter.Set(ctx, "short", json.RawMessage(`1`)))
	assert.Equal(t, time.Hour, mr.TTL(DefaultRedisPrefix+"short"))

	keys, err := adapter.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"short"}, keys)

	mr.FastForward(2 * time.Hour)
	now = now.Add(2 * time.Hour)

	_, ok, err := adapter.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err = adapter.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	members, err := mr.ZMembers(DefaultRedisPrefix + "index")
	if err == nil {
		assert.Empty(t, members, "expired index entries are pruned")
	}
}

func TestRedisAdapter_NoTTL(t *testing.T) {
	adapter, mr := newRedisAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "kept", json.RawMessage(`1`)))
	assert.Zero(t, mr.TTL(DefaultRedisPrefix+"kept"))

	score, err := mr.ZScore(DefaultRedisPrefix+"index", "kept")
	require.NoError(t, err)
	assert.Equal(t, float64(farFuture), score)
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	adapter, err := DialRedis(context.Background(), mr.Addr())
	require.NoError(t, err)
	require.NoError(t, adapter.Close())

	mr.Close()
	_, err = DialRedis(context.Background(), mr.Addr())
	assert.ErrorContains(t, err, "connect to redis")
}
