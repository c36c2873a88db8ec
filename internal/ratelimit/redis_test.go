package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketTTL(t *testing.T) {
	// 1/s with burst 30 refills in 30s.
	assert.Equal(t, 90, bucketTTL(1, 30))
	assert.Equal(t, 60, bucketTTL(1000, 1))
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	limiter := NewRedisLimiterFromClient(client)
	res, err := limiter.Allow(context.Background(), UserKey("u"), 10, 3)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 10, res.Limit)
}

func newTestRedisLimiter(t *testing.T) (*RedisLimiter, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	limiter := NewRedisLimiterFromClient(client)
	limiter.SetClock(func() time.Time { return now })
	return limiter, mr, &now
}

func TestRedisLimiter_TokenBucket(t *testing.T) {
	limiter, _, now := newTestRedisLimiter(t)
	ctx := context.Background()
	key := UserKey("u1")

	// 10/min with burst 3: three immediate requests, then empty.
	for _, remaining := range []int{2, 1, 0} {
		res, err := limiter.Allow(ctx, key, 10, 3)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, remaining, res.Remaining)
		assert.Equal(t, 10, res.Limit)
	}

	res, err := limiter.Allow(ctx, key, 10, 3)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.GreaterOrEqual(t, res.RetryAfter, 6*time.Second)
	assert.LessOrEqual(t, res.RetryAfter, 7*time.Second)

	// A full refill after 30s, capped at the burst.
	*now = now.Add(30 * time.Second)
	for _, remaining := range []int{2, 1, 0} {
		res, err := limiter.Allow(ctx, key, 10, 3)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, remaining, res.Remaining)
	}
	res, err = limiter.Allow(ctx, key, 10, 3)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestRedisLimiter_KeysAreIndependent(t *testing.T) {
	limiter, mr, _ := newTestRedisLimiter(t)
	ctx := context.Background()

	res, err := limiter.Allow(ctx, UserKey("a"), 10, 1)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	res, err = limiter.Allow(ctx, UserKey("a"), 10, 1)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	res, err = limiter.Allow(ctx, UserKey("b"), 10, 1)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	assert.True(t, mr.Exists(UserKey("a")))
	assert.Equal(t, time.Duration(bucketTTL(10.0/60.0, 1))*time.Second, mr.TTL(UserKey("a")))
}
