package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/betterhyq/LexPlain/pkg/domain/ratelimit"
	"github.com/go-redis/redis/v8"
)

// consumeScript increments the window counter, arms its expiry only on the
// first increment, and returns the count with the key's TTL in one round trip.
var consumeScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`)

type RateLimitRepository struct {
	client *redis.Client
}

func NewRateLimitRepository(client *redis.Client) ratelimit.Store {
	return &RateLimitRepository{
		client: client,
	}
}

func (r *RateLimitRepository) Consume(ctx context.Context, key string, ttl time.Duration) (int64, time.Duration, error) {
	seconds := int64(ttl / time.Second)
	if seconds <= 0 {
		seconds = 1
	}

	res, err := consumeScript.Run(ctx, r.client, []string{key}, seconds).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to consume rate limit for %s: %w", key, err)
	}

	values, ok := res.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit script result: %#v", res)
	}
	count, ok := values[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected rate limit count: %#v", values[0])
	}
	remaining, ok := values[1].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected rate limit ttl: %#v", values[1])
	}

	return count, time.Duration(remaining) * time.Second, nil
}
