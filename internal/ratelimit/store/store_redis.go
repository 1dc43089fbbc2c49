package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"spectra/internal/ratelimit/models"
)

// DefaultRedisPrefix namespaces the per-client sorted sets.
const DefaultRedisPrefix = "spectra:ratelimit:"

// slidingWindow trims the window, counts it and records the request only
// when there is room, all in one round trip.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local first = now
if oldest[2] then
  first = tonumber(oldest[2])
end
if count >= limit then
  return {0, count, first}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1, first}
`)

// RedisStore shares windows across server instances.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedis(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) Allow(ctx context.Context, key string, policy models.Policy) (*models.Result, error) {
	now := s.now()
	nowMs := now.UnixMilli()
	raw, err := slidingWindow.Run(ctx, s.client, []string{s.prefix + key},
		nowMs, policy.Window.Milliseconds(), policy.Limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if len(raw) != 3 {
		return nil, fmt.Errorf("rate limit check: unexpected reply of length %d", len(raw))
	}

	allowed := raw[0] == 1
	count := int(raw[1])
	resetAt := time.UnixMilli(raw[2]).Add(policy.Window)
	remaining := policy.Limit - count
	if remaining < 0 || !allowed {
		remaining = 0
	}
	return &models.Result{
		Allowed:    allowed,
		Limit:      policy.Limit,
		Remaining:  remaining,
		ResetAt:    resetAt,
		RetryAfter: models.RetryAfterSeconds(allowed, now, resetAt),
	}, nil
}
