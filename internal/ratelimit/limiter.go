// Package ratelimit throttles the expensive per-user routes. Limits are
// expressed per minute with a burst allowance and scale with the plan tier.
package ratelimit

import (
	"context"
	"time"

	"visual-god-backend/internal/platform"
)

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string, perMinute, burst int) (Result, error)
}

// ScaleForPlan applies the plan multiplier to the base limits. unlimited is
// true for plans that are never throttled.
func ScaleForPlan(plan platform.Plan, perMinute, burst int) (scaledPerMinute, scaledBurst int, unlimited bool) {
	if plan.RateMultiplier <= 0 || perMinute <= 0 {
		return 0, 0, true
	}
	return perMinute * plan.RateMultiplier, burst * plan.RateMultiplier, false
}

// UserKey is the bucket key for one user.
func UserKey(userID string) string {
	return "ratelimit:user:" + userID
}
