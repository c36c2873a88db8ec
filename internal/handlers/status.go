package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"visual-god-backend/internal/models"
	"visual-god-backend/internal/services"
)

type StatusHandler struct {
	dbClient services.Store
}

func NewStatusHandler(dbClient services.Store) *StatusHandler {
	return &StatusHandler{
		dbClient: dbClient,
	}
}

// GetStatus godoc
// @Summary     Get session status
// @Description Lightweight polling endpoint. Realtime subscribers receive the same transitions on the session:<id> channel.
// @Tags        sessions
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.SessionStatusResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/status [get]
func (h *StatusHandler) GetStatus(c *gin.Context) {
	if h.dbClient == nil {
		databaseUnavailable(c)
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	session, err := h.dbClient.GetSession(c.Request.Context(), sessionID, userID)
	if err != nil {
		sessionLookupFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SessionStatusResponse{
		SessionID:   session.ID.String(),
		Status:      session.Status,
		CreditsUsed: session.CreditsUsed,
		UpdatedAt:   session.UpdatedAt,
	})
}
