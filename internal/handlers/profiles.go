package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"visual-god-backend/internal/middleware"
	"visual-god-backend/internal/models"
	"visual-god-backend/internal/services"
)

// MaxAvatarBytes is the largest accepted profile picture.
const MaxAvatarBytes = 5 << 20

type ProfilesHandler struct {
	dbClient services.Store
	avatars  services.AvatarStore
	now      func() time.Time
}

func NewProfilesHandler(dbClient services.Store, avatars services.AvatarStore) *ProfilesHandler {
	return &ProfilesHandler{
		dbClient: dbClient,
		avatars:  avatars,
		now:      time.Now,
	}
}

// GetProfile godoc
// @Summary     Get the current user's profile
// @Description Returns the profile with plan and credit balance. A profile is created on first access.
// @Tags        profile
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ProfileResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /profile [get]
func (h *ProfilesHandler) GetProfile(c *gin.Context) {
	if h.dbClient == nil {
		databaseUnavailable(c)
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.dbClient.EnsureProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load profile",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(profile, middleware.UserEmail(c)))
}

// UpdateProfile godoc
// @Summary     Update the current user's profile
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.UpdateProfileRequest true "Fields to change"
// @Success     200 {object} models.ProfileResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /profile [patch]
func (h *ProfilesHandler) UpdateProfile(c *gin.Context) {
	if h.dbClient == nil {
		databaseUnavailable(c)
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	if _, err := h.dbClient.EnsureProfile(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load profile",
			Message: err.Error(),
		})
		return
	}

	profile, err := h.dbClient.UpdateProfile(c.Request.Context(), userID, req.Username, req.FullName)
	if err != nil {
		if errors.Is(err, models.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "username already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update profile",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(profile, middleware.UserEmail(c)))
}

// UploadAvatar godoc
// @Summary     Upload a profile picture
// @Tags        profile
// @Accept      mpfd
// @Produce     json
// @Security    Bearer
// @Param       avatar formData file true "JPEG, PNG or WebP image, at most 5MB"
// @Success     200 {object} models.ProfileResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     413 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /profile/avatar [post]
func (h *ProfilesHandler) UploadAvatar(c *gin.Context) {
	if h.dbClient == nil {
		databaseUnavailable(c)
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no file uploaded",
			Message: "please provide the image in the avatar field",
		})
		return
	}
	if file.Size > MaxAvatarBytes {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Error:   "file too large",
			Message: fmt.Sprintf("avatar must be at most %dMB", MaxAvatarBytes>>20),
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to open file", Message: err.Error()})
		return
	}
	data, err := io.ReadAll(io.LimitReader(src, MaxAvatarBytes+1))
	src.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read file", Message: err.Error()})
		return
	}
	if len(data) > MaxAvatarBytes {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Error:   "file too large",
			Message: fmt.Sprintf("avatar must be at most %dMB", MaxAvatarBytes>>20),
		})
		return
	}

	ext, err := sniffImage(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "unsupported file type",
			Message: "avatar must be a JPEG, PNG or WebP image",
		})
		return
	}

	if _, err := h.dbClient.EnsureProfile(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load profile",
			Message: err.Error(),
		})
		return
	}

	url, err := h.avatars.UploadAvatar(userID, ext, http.DetectContentType(data), data, h.now().UnixMilli())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to upload avatar",
			Message: err.Error(),
		})
		return
	}

	if err := h.dbClient.UpdateAvatarURL(c.Request.Context(), userID, url); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update profile",
			Message: err.Error(),
		})
		return
	}

	profile, err := h.dbClient.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load profile",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(profile, middleware.UserEmail(c)))
}
