package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeScript implements the token bucket refill-and-consume step atomically.
// The bucket is a hash of {tokens, last_refill_ms}; the key expires after the
// bucket would be fully refilled so idle buckets clean themselves up.
var consumeScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local refill_interval_ms = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])
local now_ms = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill_ms = tonumber(state[2])

if tokens == nil then
  tokens = capacity
  last_refill_ms = now_ms
end

local elapsed = now_ms - last_refill_ms
local max_intervals = math.floor(capacity / refill_rate) + 1
local intervals = math.floor(elapsed / refill_interval_ms)
if intervals > max_intervals then
  intervals = max_intervals
end

if intervals > 0 then
  tokens = math.min(tokens + intervals * refill_rate, capacity)
  last_refill_ms = now_ms
end

tokens = tokens - requested

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill_ms)
redis.call('PEXPIRE', key, max_intervals * refill_interval_ms)

return {tokens, last_refill_ms + refill_interval_ms}
`)

// RedisStore implements Store on Redis so limits hold across replicas.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore constructs a Redis-backed store. Keys are namespaced with
// prefix; an empty prefix defaults to "ratelimit".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}

	return &RedisStore{client: client, prefix: prefix}
}

// ConsumeTokens runs the bucket update script against Redis.
func (rs *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	now := time.Now()

	res, err := consumeScript.Run(ctx, rs.client, []string{rs.key(key)},
		cfg.Capacity,
		cfg.RefillRate,
		cfg.RefillInterval.Milliseconds(),
		tokens,
		now.UnixMilli(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("rate limit script: unexpected reply length %d", len(res))
	}

	return int(res[0]), time.UnixMilli(res[1]), nil
}

// Reset deletes the bucket for key.
func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	return rs.client.Del(ctx, rs.key(key)).Err()
}

func (rs *RedisStore) key(key string) string {
	return rs.prefix + ":" + key
}
