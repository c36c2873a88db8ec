package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"visual-god-backend/internal/models"
	"visual-god-backend/internal/services"
)

type ImagesHandler struct {
	dbClient services.Store
}

func NewImagesHandler(dbClient services.Store) *ImagesHandler {
	return &ImagesHandler{
		dbClient: dbClient,
	}
}

// ListImages godoc
// @Summary     List a session's generated images
// @Description Returns the stored images of a session with their public Supabase Storage URLs
// @Tags        images
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.ImagesResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/images [get]
func (h *ImagesHandler) ListImages(c *gin.Context) {
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

	// Verify session belongs to user
	if _, err := h.dbClient.GetSession(c.Request.Context(), sessionID, userID); err != nil {
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

	c.JSON(http.StatusOK, models.ImagesResponse{Images: toImageResponses(images)})
}
