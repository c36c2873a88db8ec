package middleware

import (
	"context"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"visual-god-backend/internal/models"
	"visual-god-backend/internal/platform"
	"visual-god-backend/internal/ratelimit"
)

// PlanLookup resolves a user's plan name.
type PlanLookup func(ctx context.Context, userID uuid.UUID) (string, error)

const rateLimitedMessage = "Too many requests. Please wait a moment and try again."

// RateLimit throttles each authenticated user. The base limits are scaled
// by the user's plan; a failed plan lookup applies the free tier.
func RateLimit(limiter ratelimit.Limiter, lookup PlanLookup, perMinute, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub := c.GetString(UserIDKey)
		if sub == "" {
			c.Next()
			return
		}

		plan := platform.PlanFor(platform.PlanFree)
		if lookup != nil {
			if userID, err := uuid.Parse(sub); err == nil {
				if name, err := lookup(c.Request.Context(), userID); err == nil {
					plan = platform.PlanFor(name)
				}
			}
		}

		limit, planBurst, unlimited := ratelimit.ScaleForPlan(plan, perMinute, burst)
		if unlimited {
			c.Next()
			return
		}

		res, err := limiter.Allow(c.Request.Context(), ratelimit.UserKey(sub), limit, planBurst)
		if err != nil {
			log.Printf("Rate limit check failed for %s: %v", sub, err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ProxyErrorResponse{
				Success: false,
				Error:   rateLimitedMessage,
			})
			return
		}

		c.Next()
	}
}
