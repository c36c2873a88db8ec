package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"visual-god-backend/internal/aibackend"
	"visual-god-backend/internal/models"
	"visual-god-backend/internal/platform"
	"visual-god-backend/internal/supabase"
)

// Upper bound for one realtime publish.
const defaultPublishTimeout = 2 * time.Second

var (
	ErrNoImages           = errors.New("no images provided")
	ErrPlatformNotAllowed = errors.New("platform not included in plan")
)

type GenerationService struct {
	generator   Generator
	store       Store
	images      ImageStore
	credits     CreditChecker
	broadcaster Broadcaster
	concurrency int
	now         func() time.Time

	publishTimeout time.Duration
}

func NewGenerationService(
	generator Generator,
	store Store,
	images ImageStore,
	credits CreditChecker,
	broadcaster Broadcaster,
	concurrency int,
) *GenerationService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &GenerationService{
		generator:   generator,
		store:       store,
		images:      images,
		credits:     credits,
		broadcaster: broadcaster,
		concurrency: concurrency,
		now:         time.Now,

		publishTimeout: defaultPublishTimeout,
	}
}

// SetClock replaces the time source used for session names and filenames.
func (s *GenerationService) SetClock(now func() time.Time) {
	s.now = now
}

// SetPublishTimeout bounds each realtime publish.
func (s *GenerationService) SetPublishTimeout(d time.Duration) {
	s.publishTimeout = d
}

type ProcessInput struct {
	UserID         uuid.UUID
	Images         []aibackend.Image
	GenerateImages bool
	Platform       string
	SessionID      uuid.NullUUID
}

// StoredImage is an upstream image with the outcome of persisting it. Both
// pointers are nil when storage failed and the inline base64 is the only copy.
type StoredImage struct {
	aibackend.GeneratedImage
	StorageURL *string `json:"storage_url"`
	DatabaseID *string `json:"database_id"`
}

type ProcessResult struct {
	SessionID      uuid.UUID
	Format         platform.Format
	CreditsCharged int
	Upstream       *aibackend.ProcessResponse
	Images         []StoredImage
}

// Stored counts the images that reached storage and the database.
func (r *ProcessResult) Stored() int {
	n := 0
	for _, img := range r.Images {
		if img.DatabaseID != nil {
			n++
		}
	}
	return n
}

// Body is the upstream response with generated_images replaced by their
// stored versions, plus the session and the credits charged.
func (r *ProcessResult) Body() map[string]interface{} {
	body := make(map[string]interface{}, len(r.Upstream.Raw)+3)
	for k, v := range r.Upstream.Raw {
		body[k] = v
	}
	if len(r.Images) > 0 {
		body["generated_images"] = r.enrichedImages()
	}
	body["session_id"] = r.SessionID.String()
	body["credits_charged"] = r.CreditsCharged
	return body
}

// enrichedImages adds the storage references to each upstream image object,
// keeping fields the typed response does not model.
func (r *ProcessResult) enrichedImages() interface{} {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(r.Upstream.Raw["generated_images"], &raw); err != nil || len(raw) != len(r.Images) {
		return r.Images
	}

	out := make([]map[string]interface{}, len(raw))
	for i, obj := range raw {
		img := make(map[string]interface{}, len(obj)+2)
		for k, v := range obj {
			img[k] = v
		}
		img["storage_url"] = r.Images[i].StorageURL
		img["database_id"] = r.Images[i].DatabaseID
		out[i] = img
	}
	return out
}

func (s *GenerationService) Validate(ctx context.Context, userID uuid.UUID, images []aibackend.Image) (*aibackend.ValidateResponse, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	return s.generator.Validate(ctx, aibackend.ValidateRequest{
		Images: images,
		UserID: userID.String(),
	})
}

// Process runs one generation request end to end: it checks the plan and
// credits, tracks the session, calls the AI backend, stores what came back
// and charges for the generated images.
//
// An upstream answer with success=false is not an error: the result is
// returned with the session marked failed and nothing charged.
func (s *GenerationService) Process(ctx context.Context, in ProcessInput) (*ProcessResult, error) {
	if len(in.Images) == 0 {
		return nil, ErrNoImages
	}

	format := platform.Resolve(in.Platform)

	profile, err := s.store.EnsureProfile(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if !platform.PlanFor(profile.Plan).Allows(format) {
		return nil, fmt.Errorf("%w: %s", ErrPlatformNotAllowed, format.Key)
	}

	required := platform.RequiredCredits(len(in.Images), format, in.GenerateImages)
	if required > 0 && !s.hasCredits(profile, required) {
		return nil, models.ErrInsufficientCredits
	}

	session, err := s.openSession(ctx, in, format)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateSessionStatus(ctx, session.ID, models.SessionProcessing); err != nil {
		return nil, err
	}
	s.publishSession(ctx, session.ID, supabase.EventProcessingStarted,
		supabase.ProcessingStartedPayload(session.ID, len(in.Images), format.Key))

	resp, err := s.generator.Process(ctx, aibackend.ProcessRequest{
		Images:         in.Images,
		UserID:         in.UserID.String(),
		SessionID:      session.ID.String(),
		GenerateImages: in.GenerateImages,
		ImageSize:      format.Key,
	})

	// The client may have gone away; the bookkeeping below still has to land.
	ctx = context.WithoutCancel(ctx)

	if err != nil {
		s.failSession(ctx, session.ID, upstreamMessage(err))
		return nil, err
	}

	result := &ProcessResult{
		SessionID: session.ID,
		Format:    format,
		Upstream:  resp,
	}

	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = resp.Message
		}
		s.failSession(ctx, session.ID, msg)
		return result, nil
	}

	result.Images = s.persistImages(ctx, in.UserID, session.ID, format, resp.GeneratedImages)

	var charged *models.Profile
	if in.GenerateImages && len(resp.GeneratedImages) > 0 {
		credits := platform.ChargeFor(len(resp.GeneratedImages), format)
		charged, err = s.store.ChargeCredits(ctx, models.CreditCharge{
			UserID:    in.UserID,
			SessionID: session.ID,
			Credits:   credits,
			Action:    models.UsageActionImageGeneration,
			Metadata: map[string]interface{}{
				"platform":    format.Key,
				"image_count": len(resp.GeneratedImages),
			},
		})
		if err != nil {
			s.failSession(ctx, session.ID, "credit charge failed")
			return nil, err
		}
		result.CreditsCharged = credits
	}

	if err := s.store.UpdateSessionStatus(ctx, session.ID, models.SessionCompleted); err != nil {
		log.Printf("Failed to complete session %s: %v", session.ID, err)
	}
	s.publishSession(ctx, session.ID, supabase.EventProcessingCompleted,
		supabase.ProcessingCompletedPayload(session.ID, len(resp.GeneratedImages), result.Stored(), result.CreditsCharged))
	if charged != nil {
		s.publishUser(ctx, in.UserID, supabase.EventCreditsUpdated,
			supabase.CreditsUpdatedPayload(charged.CreditsTotal, charged.CreditsUsed))
	}

	return result, nil
}

// DeleteSession removes a session's stored files and then the session;
// generated image rows go with it. File removal is best effort.
func (s *GenerationService) DeleteSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	if _, err := s.store.GetSession(ctx, sessionID, userID); err != nil {
		return err
	}

	if s.images != nil {
		if err := s.images.RemoveSessionFiles(userID, sessionID); err != nil {
			log.Printf("Failed to remove files for session %s: %v", sessionID, err)
		}
	}

	return s.store.DeleteSession(ctx, sessionID, userID)
}

// hasCredits asks the database function first and falls back to the
// profile already loaded.
func (s *GenerationService) hasCredits(profile *models.Profile, required int) bool {
	if s.credits != nil {
		ok, err := s.credits.CheckUserCredits(profile.ID, required)
		if err == nil {
			return ok
		}
		log.Printf("Credit check RPC failed for %s, using profile: %v", profile.ID, err)
	}
	return profile.CreditsRemaining() >= required
}

func (s *GenerationService) openSession(ctx context.Context, in ProcessInput, format platform.Format) (*models.GenerationSession, error) {
	if in.SessionID.Valid {
		return s.store.GetSession(ctx, in.SessionID.UUID, in.UserID)
	}

	name := "Session " + s.now().UTC().Format(time.RFC1123)
	return s.store.CreateSession(ctx, in.UserID, name, map[string]interface{}{
		"platform":        format.Key,
		"image_count":     len(in.Images),
		"generate_images": in.GenerateImages,
	})
}

func (s *GenerationService) failSession(ctx context.Context, sessionID uuid.UUID, msg string) {
	if err := s.store.UpdateSessionStatus(ctx, sessionID, models.SessionFailed); err != nil {
		log.Printf("Failed to mark session %s failed: %v", sessionID, err)
	}
	s.publishSession(ctx, sessionID, supabase.EventProcessingFailed,
		supabase.ProcessingFailedPayload(sessionID, msg))
}

func (s *GenerationService) publishSession(ctx context.Context, sessionID uuid.UUID, event string, payload map[string]interface{}) {
	if s.broadcaster == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	if err := s.broadcaster.PublishSessionEvent(ctx, sessionID, event, payload); err != nil {
		log.Printf("Failed to publish %s for session %s: %v", event, sessionID, err)
	}
}

func (s *GenerationService) publishUser(ctx context.Context, userID uuid.UUID, event string, payload map[string]interface{}) {
	if s.broadcaster == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	if err := s.broadcaster.PublishUserEvent(ctx, userID, event, payload); err != nil {
		log.Printf("Failed to publish %s for user %s: %v", event, userID, err)
	}
}

// persistImages uploads and records every generated image with bounded
// concurrency. A failing image is logged and returned without storage
// references; it never fails the batch.
func (s *GenerationService) persistImages(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	format platform.Format,
	generated []aibackend.GeneratedImage,
) []StoredImage {
	out := make([]StoredImage, len(generated))
	for i, img := range generated {
		out[i] = StoredImage{GeneratedImage: img}
	}
	if s.images == nil {
		return out
	}

	ts := s.now().UnixMilli()

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range generated {
		g.Go(func() error {
			url, id, err := s.persistImage(ctx, userID, sessionID, format, i, generated[i], ts)
			if err != nil {
				log.Printf("Failed to store image %d of session %s: %v", i, sessionID, err)
				return nil
			}
			out[i].StorageURL = &url
			out[i].DatabaseID = &id
			return nil
		})
	}
	g.Wait()

	return out
}

func (s *GenerationService) persistImage(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	format platform.Format,
	i int,
	img aibackend.GeneratedImage,
	ts int64,
) (string, string, error) {
	if img.ImageBase64 == "" {
		return "", "", errors.New("no image data")
	}
	data, err := DecodeBase64Image(img.ImageBase64)
	if err != nil {
		return "", "", err
	}

	filename := ImageFilename(img.ProductName, img.PromptType, i, ts)
	storagePath := supabase.GeneratedImagePath(userID, sessionID, filename)

	publicURL, err := s.images.UploadGeneratedImage(storagePath, data)
	if err != nil {
		return "", "", err
	}

	metadata, err := json.Marshal(map[string]interface{}{
		"public_url":        publicURL,
		"storage_path":      storagePath,
		"original_filename": img.InputImage,
		"product_name":      img.ProductName,
		"prompt_type":       img.PromptType,
		"base64":            img.ImageBase64,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal metadata: %w", err)
	}

	size := img.Size
	if size == "" {
		size = format.Size
	}

	row := &models.GeneratedImage{
		SessionID:   sessionID,
		UserID:      userID,
		Filename:    filename,
		FilePath:    storagePath,
		FileSize:    sql.NullInt64{Int64: int64(len(data)), Valid: true},
		MimeType:    sql.NullString{String: "image/jpeg", Valid: true},
		PromptText:  sql.NullString{String: img.Prompt, Valid: img.Prompt != ""},
		PromptIndex: sql.NullInt64{Int64: int64(img.Index), Valid: true},
		Platform:    sql.NullString{String: format.Key, Valid: true},
		Size:        sql.NullString{String: size, Valid: true},
		Metadata:    metadata,
	}
	if err := s.store.CreateGeneratedImage(ctx, row); err != nil {
		if rmErr := s.images.RemoveFile(storagePath); rmErr != nil {
			log.Printf("Failed to remove orphaned upload %s: %v", storagePath, rmErr)
		}
		return "", "", err
	}

	return publicURL, row.ID.String(), nil
}

func upstreamMessage(err error) string {
	var upstream *aibackend.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Message
	}
	return err.Error()
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	unsafeChars   = regexp.MustCompile(`[^a-z0-9_-]`)
)

// Slugify lowercases s, joins words with dashes and drops anything that is
// not safe in a storage key.
func Slugify(s, fallback string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = whitespaceRun.ReplaceAllString(slug, "-")
	slug = unsafeChars.ReplaceAllString(slug, "")
	if slug == "" {
		return fallback
	}
	return slug
}

// ImageFilename names the i-th generated image of a batch:
// {product}-{style}-{unix_ms}-{i}.jpg.
func ImageFilename(productName, promptType string, i int, unixMilli int64) string {
	style := Slugify(promptType, fmt.Sprintf("style-%d", i%platform.StylesPerProduct+1))
	return fmt.Sprintf("%s-%s-%d-%d.jpg", Slugify(productName, "product"), style, unixMilli, i)
}

// DecodeBase64Image decodes standard base64, with or without padding and
// with an optional data URL prefix.
func DecodeBase64Image(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if comma := strings.Index(s, ","); comma >= 0 {
			s = s[comma+1:]
		}
	}
	s = strings.TrimSpace(s)

	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	data, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	if rawErr == nil {
		return data, nil
	}
	return nil, fmt.Errorf("invalid base64 image: %w", err)
}
