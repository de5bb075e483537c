package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// hitScript prunes, counts and records in one round trip so concurrent
// replicas cannot interleave between the count and the ZADD.
//
// KEYS[1] sorted set, ARGV: now_ms, window_ms, limit, member
// returns {allowed, count, oldest_ms}
var hitScript = goredis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)
local count = redis.call('ZCARD', KEYS[1])
if count >= limit then
  local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
  return {0, count, oldest[2]}
end
redis.call('ZADD', KEYS[1], now, ARGV[4])
redis.call('PEXPIRE', KEYS[1], window)
return {1, count + 1, '0'}
`)

// RedisStore shares the window between replicas through one sorted set per
// key, scored by hit time in milliseconds. Keys expire with the window, so no
// sweep is needed.
type RedisStore struct {
	client goredis.UniversalClient
	prefix string
}

func NewRedisStore(client goredis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Hit(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (Decision, error) {
	nowMs := now.UnixMilli()
	member := strconv.FormatInt(nowMs, 10) + "-" + uuid.NewString()
	res, err := hitScript.Run(ctx, s.client, []string{s.prefix + key}, nowMs, window.Milliseconds(), limit, member).Slice()
	if err != nil {
		return Decision{}, err
	}
	return decisionFromScript(res, now, window, limit)
}

func decisionFromScript(res []interface{}, now time.Time, window time.Duration, limit int) (Decision, error) {
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("unexpected script reply length %d", len(res))
	}
	allowed, ok := res[0].(int64)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected allowed flag %T", res[0])
	}
	count, ok := res[1].(int64)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected count %T", res[1])
	}
	if allowed == 1 {
		return Decision{Allowed: true, Remaining: limit - int(count)}, nil
	}
	oldestRaw, ok := res[2].(string)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected oldest score %T", res[2])
	}
	oldestMs, err := strconv.ParseFloat(oldestRaw, 64)
	if err != nil {
		return Decision{}, fmt.Errorf("parse oldest score: %w", err)
	}
	oldest := time.UnixMilli(int64(oldestMs))
	return Decision{Allowed: false, RetryAfter: oldest.Add(window).Sub(now)}, nil
}
