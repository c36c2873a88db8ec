package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"visual-god-backend/internal/middleware"
	"visual-god-backend/internal/ratelimit"
)

func rateLimitedRouter(userID string, lookup middleware.PlanLookup, limiter ratelimit.Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})
	router.Use(middleware.RateLimit(limiter, lookup, 2, 2))
	router.POST("/process", okHandler)
	return router
}

func post(router *gin.Engine) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/process", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimit_RejectsOverBurst(t *testing.T) {
	lookup := func(ctx context.Context, id uuid.UUID) (string, error) { return "free", nil }
	router := rateLimitedRouter(uuid.NewString(), lookup, ratelimit.NewMemoryLimiter())

	assert.Equal(t, http.StatusOK, post(router).Code)
	w := post(router)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = post(router)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.JSONEq(t,
		`{"success": false, "error": "Too many requests. Please wait a moment and try again."}`,
		w.Body.String())
}

func TestRateLimit_ScalesWithPlan(t *testing.T) {
	lookup := func(ctx context.Context, id uuid.UUID) (string, error) { return "pro", nil }
	router := rateLimitedRouter(uuid.NewString(), lookup, ratelimit.NewMemoryLimiter())

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, post(router).Code, "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, post(router).Code)
}

func TestRateLimit_EnterpriseUnlimited(t *testing.T) {
	lookup := func(ctx context.Context, id uuid.UUID) (string, error) { return "enterprise", nil }
	router := rateLimitedRouter(uuid.NewString(), lookup, ratelimit.NewMemoryLimiter())

	for i := 0; i < 50; i++ {
		w := post(router)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimit_LookupFailureUsesFreeTier(t *testing.T) {
	lookup := func(ctx context.Context, id uuid.UUID) (string, error) { return "", errors.New("db down") }
	router := rateLimitedRouter(uuid.NewString(), lookup, ratelimit.NewMemoryLimiter())

	assert.Equal(t, http.StatusOK, post(router).Code)
	assert.Equal(t, http.StatusOK, post(router).Code)
	assert.Equal(t, http.StatusTooManyRequests, post(router).Code)
}
