package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"visual-god-backend/internal/aibackend"
	"visual-god-backend/internal/models"
	"visual-god-backend/internal/platform"
	"visual-god-backend/internal/services"
)

type ProcessHandler struct {
	generation    *services.GenerationService
	dbClient      services.Store
	maxImageBytes int64
}

func NewProcessHandler(generation *services.GenerationService, dbClient services.Store, maxImageBytes int64) *ProcessHandler {
	return &ProcessHandler{
		generation:    generation,
		dbClient:      dbClient,
		maxImageBytes: maxImageBytes,
	}
}

func proxyError(c *gin.Context, status int, message string) {
	c.JSON(status, models.ProxyErrorResponse{Success: false, Error: message})
}

// Validate godoc
// @Summary     Validate product photos
// @Description Sends the uploaded photos to the AI backend, which classifies each one as a product or not. No credits are used.
// @Description Accepts a JSON body or multipart/form-data with files under images, image, files, file, photos or photo.
// @Tags        generation
// @Accept      json,mpfd
// @Produce     json
// @Security    Bearer
// @Param       request body models.ValidateRequest true "Images to validate"
// @Success     200 {object} object "AI backend validation result"
// @Failure     400 {object} models.ProxyErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     413 {object} models.ProxyErrorResponse
// @Failure     429 {object} models.ProxyErrorResponse
// @Failure     503 {object} models.ProxyErrorResponse
// @Router      /validate [post]
func (h *ProcessHandler) Validate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	req, err := readUploadRequest(c, h.maxImageBytes)
	if err != nil {
		h.intakeFailed(c, err)
		return
	}

	resp, err := h.generation.Validate(c.Request.Context(), userID, req.Images)
	if err != nil {
		h.upstreamFailed(c, "validate", err)
		return
	}

	if resp.Raw != nil {
		c.JSON(http.StatusOK, resp.Raw)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Process godoc
// @Summary     Generate marketing images
// @Description Validates the photos, writes prompts and renders three styles per valid product in the chosen platform format.
// @Description Credits are reserved up front (images x 3 x format credits) and charged per generated image.
// @Description Generated images are stored in Supabase Storage; an image whose upload fails is returned inline with storage_url null.
// @Tags        generation
// @Accept      json,mpfd
// @Produce     json
// @Security    Bearer
// @Param       request body models.ProcessRequest true "Images and generation options"
// @Success     200 {object} object "AI backend result with stored image references, session_id and credits_charged"
// @Failure     400 {object} models.ProxyErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     403 {object} models.ProxyErrorResponse
// @Failure     404 {object} models.ProxyErrorResponse
// @Failure     413 {object} models.ProxyErrorResponse
// @Failure     429 {object} models.ProxyErrorResponse
// @Failure     500 {object} models.ProxyErrorResponse
// @Failure     504 {object} models.ProxyErrorResponse
// @Router      /process [post]
func (h *ProcessHandler) Process(c *gin.Context) {
	if h.dbClient == nil {
		databaseUnavailable(c)
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	req, err := readUploadRequest(c, h.maxImageBytes)
	if err != nil {
		h.intakeFailed(c, err)
		return
	}

	input := services.ProcessInput{
		UserID:         userID,
		Images:         req.Images,
		GenerateImages: req.GenerateImages,
		Platform:       req.ImageSize,
	}
	if req.SessionID != "" {
		sessionID, err := uuid.Parse(req.SessionID)
		if err != nil {
			proxyError(c, http.StatusBadRequest, "Invalid session id")
			return
		}
		input.SessionID = uuid.NullUUID{UUID: sessionID, Valid: true}
	}

	result, err := h.generation.Process(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPlatformNotAllowed):
			proxyError(c, http.StatusForbidden, "Your plan does not include the "+
				platform.Resolve(req.ImageSize).Label+" format. Upgrade your plan to use it.")
		case errors.Is(err, models.ErrInsufficientCredits):
			proxyError(c, http.StatusForbidden, "Insufficient credits")
		case errors.Is(err, models.ErrNotFound):
			proxyError(c, http.StatusNotFound, "Session not found")
		default:
			h.upstreamFailed(c, "process", err)
		}
		return
	}

	c.JSON(http.StatusOK, result.Body())
}

func (h *ProcessHandler) intakeFailed(c *gin.Context, err error) {
	var intake *intakeError
	if errors.As(err, &intake) {
		proxyError(c, intake.status, intake.message)
		return
	}
	proxyError(c, http.StatusBadRequest, err.Error())
}

func (h *ProcessHandler) upstreamFailed(c *gin.Context, op string, err error) {
	log.Printf("%s failed: %v", op, err)

	var upstream *aibackend.UpstreamError
	if errors.As(err, &upstream) {
		proxyError(c, upstream.StatusCode, upstream.Message)
		return
	}
	if errors.Is(err, services.ErrNoImages) {
		proxyError(c, http.StatusBadRequest, "No images provided")
		return
	}
	proxyError(c, http.StatusInternalServerError, err.Error())
}
