package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"visual-god-backend/internal/aibackend"
	"visual-god-backend/internal/models"
	"visual-god-backend/internal/services"
)

// Multipart field names accepted for uploaded photos, in lookup order.
var imageFieldNames = []string{"images", "image", "files", "file", "photos", "photo"}

// MaxImagesPerRequest caps the photos accepted by one validate or process call.
const MaxImagesPerRequest = 20

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// intakeError carries the status and message an intake failure is answered
// with.
type intakeError struct {
	status  int
	message string
}

func (e *intakeError) Error() string {
	return e.message
}

// uploadRequest is a validate or process request after intake, with every
// image decoded, checked and re-encoded as plain base64.
type uploadRequest struct {
	Images         []aibackend.Image
	GenerateImages bool
	ImageSize      string
	SessionID      string
}

// readUploadRequest accepts either a JSON body or a multipart form.
func readUploadRequest(c *gin.Context, maxImageBytes int64) (*uploadRequest, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		return readMultipartUpload(c, maxImageBytes)
	}
	return readJSONUpload(c, maxImageBytes)
}

// maxJSONBodyBytes is the largest body that can carry MaxImagesPerRequest
// images of maxImageBytes each as base64, plus 1MB for everything else.
func maxJSONBodyBytes(maxImageBytes int64) int64 {
	encoded := (maxImageBytes + 2) / 3 * 4
	return MaxImagesPerRequest*encoded + 1<<20
}

func readJSONUpload(c *gin.Context, maxImageBytes int64) (*uploadRequest, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxJSONBodyBytes(maxImageBytes))

	var req models.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &intakeError{http.StatusBadRequest, "No images provided"}
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, &intakeError{http.StatusRequestEntityTooLarge, "Request body is too large"}
		}
		return nil, &intakeError{http.StatusBadRequest, "Invalid request body: " + err.Error()}
	}
	if len(req.Images) == 0 {
		return nil, &intakeError{http.StatusBadRequest, "No images provided"}
	}
	if len(req.Images) > MaxImagesPerRequest {
		return nil, tooManyImages()
	}

	out := &uploadRequest{
		Images:         make([]aibackend.Image, 0, len(req.Images)),
		GenerateImages: req.WantsImages(),
		ImageSize:      req.ImageSize,
		SessionID:      req.Session(),
	}
	for i, in := range req.Images {
		filename := in.Filename
		if filename == "" {
			filename = fmt.Sprintf("image_%d", i+1)
		}
		if strings.TrimSpace(in.Base64) == "" {
			return nil, &intakeError{http.StatusBadRequest, fmt.Sprintf("Image %s has no data", filename)}
		}
		data, err := services.DecodeBase64Image(in.Base64)
		if err != nil {
			return nil, &intakeError{http.StatusBadRequest, fmt.Sprintf("Image %s is not valid base64", filename)}
		}
		img, err := checkImage(filename, data, maxImageBytes)
		if err != nil {
			return nil, err
		}
		out.Images = append(out.Images, img)
	}
	return out, nil
}

func readMultipartUpload(c *gin.Context, maxImageBytes int64) (*uploadRequest, error) {
	// Set max memory for multipart form (32MB)
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		return nil, &intakeError{http.StatusBadRequest, "Failed to parse multipart form: " + err.Error()}
	}
	form := c.Request.MultipartForm
	if form == nil {
		return nil, &intakeError{http.StatusBadRequest, "No images provided"}
	}

	var files []*multipart.FileHeader
	for _, fieldName := range imageFieldNames {
		if f := form.File[fieldName]; len(f) > 0 {
			files = f
			break
		}
	}
	if len(files) == 0 {
		return nil, &intakeError{http.StatusBadRequest, "No images provided"}
	}
	if len(files) > MaxImagesPerRequest {
		return nil, tooManyImages()
	}

	out := &uploadRequest{
		Images:         make([]aibackend.Image, 0, len(files)),
		GenerateImages: true,
		ImageSize:      c.PostForm("image_size"),
		SessionID:      c.PostForm("session_id"),
	}
	if v := c.PostForm("generate_images"); v != "" {
		generate, err := strconv.ParseBool(v)
		if err != nil {
			return nil, &intakeError{http.StatusBadRequest, "generate_images must be true or false"}
		}
		out.GenerateImages = generate
	}

	for _, file := range files {
		if file.Size > maxImageBytes {
			return nil, tooLarge(file.Filename, maxImageBytes)
		}
		data, err := readFormFile(file, maxImageBytes)
		if err != nil {
			return nil, err
		}
		img, err := checkImage(file.Filename, data, maxImageBytes)
		if err != nil {
			return nil, err
		}
		out.Images = append(out.Images, img)
	}
	return out, nil
}

func readFormFile(file *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, &intakeError{http.StatusBadRequest, fmt.Sprintf("Failed to open %s", file.Filename)}
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return nil, &intakeError{http.StatusBadRequest, fmt.Sprintf("Failed to read %s", file.Filename)}
	}
	return data, nil
}

// checkImage enforces the size limit and sniffs the content type.
func checkImage(filename string, data []byte, maxBytes int64) (aibackend.Image, error) {
	if int64(len(data)) > maxBytes {
		return aibackend.Image{}, tooLarge(filename, maxBytes)
	}
	if _, err := sniffImage(data); err != nil {
		return aibackend.Image{}, &intakeError{http.StatusBadRequest,
			fmt.Sprintf("Image %s must be a JPEG, PNG or WebP file", filename)}
	}
	return aibackend.Image{
		Base64:   base64.StdEncoding.EncodeToString(data),
		Filename: filename,
	}, nil
}

// sniffImage returns the file extension for an allowed image type.
func sniffImage(data []byte) (string, error) {
	contentType := http.DetectContentType(data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported content type %s", contentType)
	}
	return ext, nil
}

func tooLarge(filename string, maxBytes int64) *intakeError {
	return &intakeError{http.StatusRequestEntityTooLarge,
		fmt.Sprintf("Image %s is too large. Maximum size is %dMB.", filename, maxBytes>>20)}
}

func tooManyImages() *intakeError {
	return &intakeError{http.StatusBadRequest,
		fmt.Sprintf("Too many images. Maximum is %d per request.", MaxImagesPerRequest)}
}
