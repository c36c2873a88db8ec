package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"visual-god-backend/internal/models"
	"visual-god-backend/internal/services"
)

type StatsHandler struct {
	dbClient services.Store
	stats    *services.StatsService
}

func NewStatsHandler(dbClient services.Store, stats *services.StatsService) *StatsHandler {
	return &StatsHandler{
		dbClient: dbClient,
		stats:    stats,
	}
}

// GetStats godoc
// @Summary     Get usage statistics
// @Description Returns credit and generation totals, the latest 30 usage entries and credits spent per day over the last 7 active days (UTC, oldest first).
// @Tags        stats
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.StatsResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	if h.dbClient == nil {
		databaseUnavailable(c)
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.stats.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load statistics",
			Message: err.Error(),
		})
		return
	}

	usage := make([]models.UsageLogResponse, len(stats.Usage))
	for i := range stats.Usage {
		usage[i] = toUsageLogResponse(&stats.Usage[i])
	}
	daily := stats.DailyUsage
	if daily == nil {
		daily = []models.DailyUsage{}
	}

	c.JSON(http.StatusOK, models.StatsResponse{
		Stats:      stats.Summary,
		Usage:      usage,
		DailyUsage: daily,
	})
}
