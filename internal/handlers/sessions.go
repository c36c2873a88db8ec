package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"visual-god-backend/internal/models"
	"visual-god-backend/internal/services"
)

const (
	defaultSessionLimit = 50
	maxSessionLimit     = 100
)

type SessionsHandler struct {
	dbClient   services.Store
	generation *services.GenerationService
	now        func() time.Time
}

func NewSessionsHandler(dbClient services.Store, generation *services.GenerationService) *SessionsHandler {
	return &SessionsHandler{
		dbClient:   dbClient,
		generation: generation,
		now:        time.Now,
	}
}

// CreateSession godoc
// @Summary     Create a generation session
// @Description Creates an empty pending session. Pass its id as session_id to /process to group several runs.
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateSessionRequest false "Session name and metadata"
// @Success     200 {object} models.SessionResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /sessions [post]
func (h *SessionsHandler) CreateSession(c *gin.Context) {
	if h.dbClient == nil {
		databaseUnavailable(c)
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// If no JSON body, use defaults
		req = models.CreateSessionRequest{}
	}
	if req.SessionName == "" {
		req.SessionName = "Session " + h.now().UTC().Format(time.RFC1123)
	}

	if _, err := h.dbClient.EnsureProfile(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load profile",
			Message: err.Error(),
		})
		return
	}

	session, err := h.dbClient.CreateSession(c.Request.Context(), userID, req.SessionName, req.Metadata)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create session",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session))
}

// ListSessions godoc
// @Summary     List generation sessions
// @Description Returns the newest sessions with their generated images.
// @Tags        sessions
// @Produce     json
// @Security    Bearer
// @Param       limit query int false "Maximum sessions to return (default 50, max 100)"
// @Success     200 {object} models.SessionListResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /sessions [get]
func (h *SessionsHandler) ListSessions(c *gin.Context) {
	if h.dbClient == nil {
		databaseUnavailable(c)
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	limit := defaultSessionLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxSessionLimit)
		}
	}

	sessions, err := h.dbClient.ListSessions(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list sessions",
			Message: err.Error(),
		})
		return
	}

	out := make([]models.SessionResponse, len(sessions))
	for i := range sessions {
		out[i] = toSessionResponse(&sessions[i])
	}

	c.JSON(http.StatusOK, models.SessionListResponse{Sessions: out})
}

// GetSession godoc
// @Summary     Get a generation session
// @Tags        sessions
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.SessionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id} [get]
func (h *SessionsHandler) GetSession(c *gin.Context) {
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

	images, err := h.dbClient.ListSessionImages(c.Request.Context(), sessionID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list images",
			Message: err.Error(),
		})
		return
	}
	session.Images = images

	c.JSON(http.StatusOK, toSessionResponse(session))
}

// DeleteSession godoc
// @Summary     Delete a generation session
// @Description Deletes the session, its generated images and their stored files. Usage history is kept.
// @Tags        sessions
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} object "{\"message\": \"session deleted successfully\"}"
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /sessions/{session_id} [delete]
func (h *SessionsHandler) DeleteSession(c *gin.Context) {
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

	if err := h.generation.DeleteSession(c.Request.Context(), userID, sessionID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			sessionLookupFailed(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete session",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "session deleted successfully"})
}

func sessionLookupFailed(c *gin.Context, err error) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "session not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "failed to load session",
		Message: err.Error(),
	})
}
