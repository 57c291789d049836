package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces the keys a RedisAdapter writes.
const DefaultRedisPrefix = "talk2mcp:report:"

// farFuture scores index entries that never expire (2100-01-01).
const farFuture = 4102444800

// RedisAdapter stores values in Redis. Each value lives under prefix+key
// with the configured TTL, and a sorted set scored by expiry time indexes
// the live keys. Expired index entries are pruned lazily by Keys.
type RedisAdapter struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// RedisOption configures a RedisAdapter.
type RedisOption func(*RedisAdapter)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(a *RedisAdapter) {
		a.prefix = prefix
	}
}

// WithTTL sets the expiration of stored values. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(a *RedisAdapter) {
		if ttl >= 0 {
			a.ttl = ttl
		}
	}
}

// NewRedisAdapter creates an adapter over an existing client.
func NewRedisAdapter(client *redis.Client, opts ...RedisOption) *RedisAdapter {
	a := &RedisAdapter{
		client: client,
		prefix: DefaultRedisPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr string, opts ...RedisOption) (*RedisAdapter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: connect to redis at %s: %w", addr, err)
	}
	return NewRedisAdapter(client, opts...), nil
}

func (a *RedisAdapter) key(k string) string {
	return a.prefix + k
}

func (a *RedisAdapter) indexKey() string {
	return a.prefix + "index"
}

// Get retrieves a value by key.
func (a *RedisAdapter) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	val, err := a.client.Get(ctx, a.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store: redis get %s: %w", key, err)
	}
	return json.RawMessage(val), true, nil
}

// Set stores a value and indexes it in one pipeline.
func (a *RedisAdapter) Set(ctx context.Context, key string, value json.RawMessage) error {
	score := float64(farFuture)
	if a.ttl > 0 {
		score = float64(a.now().Add(a.ttl).Unix())
	}

	pipe := a.client.Pipeline()
	pipe.Set(ctx, a.key(key), []byte(value), a.ttl)
	pipe.ZAdd(ctx, a.indexKey(), redis.Z{Score: score, Member: key})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store: redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value and its index entry.
func (a *RedisAdapter) Delete(ctx context.Context, key string) error {
	pipe := a.client.Pipeline()
	pipe.Del(ctx, a.key(key))
	pipe.ZRem(ctx, a.indexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store: redis delete %s: %w", key, err)
	}
	return nil
}

// Keys prunes expired index entries and returns the rest.
func (a *RedisAdapter) Keys(ctx context.Context) ([]string, error) {
	now := strconv.FormatInt(a.now().Unix(), 10)
	if err := a.client.ZRemRangeByScore(ctx, a.indexKey(), "-inf", "("+now).Err(); err != nil {
		return nil, fmt.Errorf("store: prune expired keys: %w", err)
	}
	keys, err := a.client.ZRange(ctx, a.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("store: list keys: %w", err)
	}
	return keys, nil
}

// Close closes the underlying client.
func (a *RedisAdapter) Close() error {
	return a.client.Close()
}
