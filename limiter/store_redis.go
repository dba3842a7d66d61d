package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWindowScript implements the fixed-window check in one atomic Lua
// execution: compare against the limit, increment only when below it, and
// set the expiry exactly once on the 0→1 transition. Running all three
// steps in one script closes the increment/expire crash gap that would
// otherwise leave a counter without a TTL.
// Returns {count, allowed}.
var incrWindowScript = redis.NewScript(`
local limit = tonumber(ARGV[1])
local count = tonumber(redis.call("GET", KEYS[1]) or "0")
if count >= limit then
	return {count, 0}
end
count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return {count, 1}
`)

// slideWindowScript prunes entries older than the window start, counts the
// survivors and conditionally admits the new entry, all atomically.
// ARGV: limit, ttl_ms, window_start, now, member. Returns {count, allowed}.
var slideWindowScript = redis.NewScript(`
local limit = tonumber(ARGV[1])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", "(" .. ARGV[3])
local count = redis.call("ZCARD", KEYS[1])
if count >= limit then
	return {count, 0}
end
redis.call("ZADD", KEYS[1], ARGV[4], ARGV[5])
redis.call("PEXPIRE", KEYS[1], ARGV[2])
return {count + 1, 1}
`)

// decrIfPositiveScript refunds one slot without ever driving the counter
// negative.
var decrIfPositiveScript = redis.NewScript(`
local count = tonumber(redis.call("GET", KEYS[1]) or "0")
if count > 0 then
	return redis.call("DECR", KEYS[1])
end
return count
`)

// RedisStore implements Store on a shared Redis instance.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a Redis-backed store. The prefix namespaces all
// limiter keys on a shared instance (default "admission:").
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "admission:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) buildKey(key string) string {
	return s.keyPrefix + key
}

// IncrWindow runs the fixed-window script.
func (s *RedisStore) IncrWindow(ctx context.Context, key string, limit int64, ttl time.Duration) (int64, bool, error) {
	res, err := incrWindowScript.Run(ctx, s.client,
		[]string{s.buildKey(key)},
		limit, ttl.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("fixed window script: %w", err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("fixed window script: unexpected reply %v", res)
	}
	return res[0], res[1] == 1, nil
}

// SlideWindow runs the sliding-window script.
func (s *RedisStore) SlideWindow(ctx context.Context, key, member string, limit int64, windowStart, now int64, ttl time.Duration) (int64, bool, error) {
	res, err := slideWindowScript.Run(ctx, s.client,
		[]string{s.buildKey(key)},
		limit, ttl.Milliseconds(), windowStart, now, member,
	).Int64Slice()
	if err != nil {
		return 0, false, fmt.Errorf("sliding window script: %w", err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("sliding window script: unexpected reply %v", res)
	}
	return res[0], res[1] == 1, nil
}

// DecrIfPositive refunds one counted request.
func (s *RedisStore) DecrIfPositive(ctx context.Context, key string) (int64, error) {
	count, err := decrIfPositiveScript.Run(ctx, s.client, []string{s.buildKey(key)}).Int64()
	if err != nil {
		return 0, fmt.Errorf("refund script: %w", err)
	}
	return count, nil
}

// PopNewest drops the most recent sliding-window entry.
func (s *RedisStore) PopNewest(ctx context.Context, key string) error {
	return s.client.ZRemRangeByRank(ctx, s.buildKey(key), -1, -1).Err()
}

// TTL returns the remaining lifetime of key.
func (s *RedisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, s.buildKey(key)).Result()
	if err != nil {
		return 0, err
	}
	// -2 when the key does not exist, -1 when it has no expiry
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Del removes keys.
func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, key := range keys {
		fullKeys[i] = s.buildKey(key)
	}
	return s.client.Del(ctx, fullKeys...).Err()
}

// Close is a no-op; the client is owned by the redis manager.
func (s *RedisStore) Close() error {
	return nil
}
