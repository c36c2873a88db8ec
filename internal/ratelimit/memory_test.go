package ratelimit_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"visual-god-backend/internal/ratelimit"
)

func TestMemoryLimiter_BurstThenReject(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.SetClock(func() time.Time { return now })

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "user-1", 10, 3)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := limiter.Allow(ctx, "user-1", 10, 3)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.InDelta(t, float64(6*time.Second), float64(res.RetryAfter), float64(100*time.Millisecond))

	// Other keys have their own bucket.
	res, err = limiter.Allow(ctx, "user-2", 10, 3)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	now = now.Add(7 * time.Second)
	res, err = limiter.Allow(ctx, "user-1", 10, 3)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestMemoryLimiter_Unlimited(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter()
	for i := 0; i < 100; i++ {
		res, err := limiter.Allow(context.Background(), "user", 0, 0)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
	assert.Equal(t, 0, limiter.Len())
}

func TestMemoryLimiter_EvictsIdleKeys(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.SetClock(func() time.Time { return now })

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := limiter.Allow(ctx, fmt.Sprintf("user-%d", i), 10, 3)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, limiter.Len())

	now = now.Add(11 * time.Minute)
	_, err := limiter.Allow(ctx, "fresh", 10, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, limiter.Len())
}
