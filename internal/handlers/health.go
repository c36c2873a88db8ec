package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"visual-god-backend/internal/models"
	"visual-god-backend/internal/platform"
)

// HealthHandler godoc
// @Summary     Health check
// @Description Returns the health status of the API
// @Tags        health
// @Accept      json
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Router      /health [get]
func HealthHandler(c *gin.Context) {
	response := models.HealthResponse{
		Status: "ok",
	}
	c.JSON(http.StatusOK, response)
}

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

type ReadinessHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewReadinessHandler(checks map[string]HealthCheck) *ReadinessHandler {
	return &ReadinessHandler{checks: checks, timeout: 5 * time.Second}
}

// Ready godoc
// @Summary     Readiness check
// @Description Checks the database, Redis (when configured) and the AI backend. Returns 503 when any check fails.
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Failure     503 {object} models.HealthResponse
// @Router      /health/ready [get]
func (h *ReadinessHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	response := models.HealthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			response.Status = "unavailable"
			response.Checks[name] = err.Error()
			continue
		}
		response.Checks[name] = "ok"
	}

	status := http.StatusOK
	if response.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}

// ListPlatforms godoc
// @Summary     List platform formats
// @Description Returns the output formats with their size and credit cost, and the plan tiers that gate them
// @Tags        platforms
// @Produce     json
// @Success     200 {object} models.PlatformsResponse
// @Router      /platforms [get]
func ListPlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, models.PlatformsResponse{
		Platforms: platform.Formats(),
		Plans:     platform.Plans(),
	})
}
