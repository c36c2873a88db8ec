package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"visual-god-backend/internal/middleware"
	"visual-god-backend/internal/models"
)

func databaseUnavailable(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
}

// currentUser writes a 401 and returns false when the request carries no
// usable user id.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, err := middleware.UserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found", Message: err.Error()})
		return uuid.Nil, false
	}
	return userID, true
}

func sessionParam(c *gin.Context) (uuid.UUID, bool) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid session id"})
		return uuid.Nil, false
	}
	return sessionID, true
}

func decodeMetadata(raw json.RawMessage) map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil
	}
	return metadata
}

func toProfileResponse(p *models.Profile, email string) models.ProfileResponse {
	return models.ProfileResponse{
		ID:               p.ID.String(),
		Username:         p.Username.String,
		FullName:         p.FullName.String,
		AvatarURL:        p.AvatarURL.String,
		Email:            email,
		Plan:             p.Plan,
		CreditsTotal:     p.CreditsTotal,
		CreditsUsed:      p.CreditsUsed,
		CreditsRemaining: p.CreditsRemaining(),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toImageResponse(img *models.GeneratedImage) models.ImageResponse {
	return models.ImageResponse{
		ID:          img.ID.String(),
		Filename:    img.Filename,
		StorageURL:  img.PublicURL(),
		FileSize:    img.FileSize.Int64,
		MimeType:    img.MimeType.String,
		PromptText:  img.PromptText.String,
		PromptIndex: img.PromptIndex.Int64,
		Platform:    img.Platform.String,
		Size:        img.Size.String,
		CreatedAt:   img.CreatedAt,
	}
}

func toImageResponses(images []models.GeneratedImage) []models.ImageResponse {
	out := make([]models.ImageResponse, len(images))
	for i := range images {
		out[i] = toImageResponse(&images[i])
	}
	return out
}

func toSessionResponse(s *models.GenerationSession) models.SessionResponse {
	resp := models.SessionResponse{
		ID:          s.ID.String(),
		SessionName: s.SessionName.String,
		Status:      s.Status,
		CreditsUsed: s.CreditsUsed,
		Metadata:    decodeMetadata(s.Metadata),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if len(s.Images) > 0 {
		resp.Images = toImageResponses(s.Images)
	}
	return resp
}

func toUsageLogResponse(l *models.UsageLog) models.UsageLogResponse {
	resp := models.UsageLogResponse{
		ID:          l.ID.String(),
		Action:      l.Action,
		CreditsUsed: l.CreditsUsed,
		Metadata:    decodeMetadata(l.Metadata),
		CreatedAt:   l.CreatedAt,
	}
	if l.SessionID.Valid {
		resp.SessionID = l.SessionID.UUID.String()
	}
	return resp
}
