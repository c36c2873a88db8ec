package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills and consumes a bucket atomically.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- bucket capacity
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- key TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = math.max(0, now - last_update)
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HSET', key, 'tokens', tostring(tokens), 'last_update', tostring(now))
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// RedisLimiter shares buckets between instances through Redis.
type RedisLimiter struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisLimiter connects to redisURL and verifies the connection.
func NewRedisLimiter(ctx context.Context, redisURL string) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisLimiter{client: client, now: time.Now}, nil
}

func NewRedisLimiterFromClient(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client, now: time.Now}
}

// SetClock replaces the time source used for refills.
func (r *RedisLimiter) SetClock(now func() time.Time) {
	r.now = now
}

// Allow fails open: a Redis error lets the request through.
func (r *RedisLimiter) Allow(ctx context.Context, key string, perMinute, burst int) (Result, error) {
	if perMinute <= 0 {
		return Result{Allowed: true, Limit: burst, Remaining: burst}, nil
	}

	ratePerSecond := float64(perMinute) / 60.0
	now := float64(r.now().UnixMicro()) / 1e6

	result, err := tokenBucketScript.Run(ctx, r.client,
		[]string{key},
		ratePerSecond, burst, now, bucketTTL(ratePerSecond, burst),
	).Int64Slice()
	if err != nil {
		log.Printf("Rate limiter unavailable, allowing request: %v", err)
		return Result{Allowed: true, Limit: perMinute, Remaining: burst}, nil
	}

	return Result{
		Allowed:    result[0] == 1,
		Limit:      perMinute,
		Remaining:  int(result[2]),
		RetryAfter: time.Duration(result[1]) * time.Second,
	}, nil
}

func (r *RedisLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisLimiter) Close() error {
	return r.client.Close()
}

// bucketTTL keeps a key until a drained bucket would be full again.
func bucketTTL(ratePerSecond float64, burst int) int {
	ttl := int(float64(burst)/ratePerSecond) + 60
	if ttl < 60 {
		ttl = 60
	}
	return ttl
}
