// Package storetest provides in-memory implementations of the service
// dependencies for tests.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"visual-god-backend/internal/aibackend"
	"visual-god-backend/internal/models"
	"visual-god-backend/internal/platform"
)

// Store is an in-memory services.Store. Set the Err fields to make the
// matching calls fail.
type Store struct {
	mu sync.Mutex

	Profiles  map[uuid.UUID]*models.Profile
	Sessions  map[uuid.UUID]*models.GenerationSession
	Images    []models.GeneratedImage
	UsageLogs []models.UsageLog

	// StatusHistory records every status a session moved through.
	StatusHistory map[uuid.UUID][]string

	Usernames map[string]uuid.UUID

	CreateImageErr error
	ChargeErr      error
	PingErr        error

	now time.Time
}

func NewStore() *Store {
	return &Store{
		Profiles:      make(map[uuid.UUID]*models.Profile),
		Sessions:      make(map[uuid.UUID]*models.GenerationSession),
		StatusHistory: make(map[uuid.UUID][]string),
		Usernames:     make(map[string]uuid.UUID),
		now:           time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC),
	}
}

// AddProfile seeds a profile with the given plan and credits.
func (s *Store) AddProfile(userID uuid.UUID, plan string, total, used int) *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Profile{
		ID:           userID,
		Plan:         plan,
		CreditsTotal: total,
		CreditsUsed:  used,
		CreatedAt:    s.now,
		UpdatedAt:    s.now,
	}
	s.Profiles[userID] = p
	return p
}

// AddUsage seeds a usage log entry.
func (s *Store) AddUsage(userID uuid.UUID, credits int, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UsageLogs = append(s.UsageLogs, models.UsageLog{
		ID:          uuid.New(),
		UserID:      userID,
		Action:      models.UsageActionImageGeneration,
		CreditsUsed: credits,
		CreatedAt:   at,
	})
}

func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Profiles[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) EnsureProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	s.mu.Lock()
	if _, ok := s.Profiles[userID]; !ok {
		free := platform.PlanFor(platform.PlanFree)
		s.Profiles[userID] = &models.Profile{
			ID:           userID,
			Plan:         free.Name,
			CreditsTotal: free.MonthlyCredits,
			CreatedAt:    s.now,
			UpdatedAt:    s.now,
		}
	}
	s.mu.Unlock()
	return s.GetProfile(ctx, userID)
}

func (s *Store) UpdateProfile(ctx context.Context, userID uuid.UUID, username, fullName *string) (*models.Profile, error) {
	s.mu.Lock()
	p, ok := s.Profiles[userID]
	if !ok {
		s.mu.Unlock()
		return nil, models.ErrNotFound
	}
	if username != nil {
		name := strings.TrimSpace(*username)
		if owner, taken := s.Usernames[name]; taken && owner != userID && name != "" {
			s.mu.Unlock()
			return nil, models.ErrUsernameTaken
		}
		p.Username.String, p.Username.Valid = name, name != ""
		if name != "" {
			s.Usernames[name] = userID
		}
	}
	if fullName != nil {
		name := strings.TrimSpace(*fullName)
		p.FullName.String, p.FullName.Valid = name, name != ""
	}
	s.mu.Unlock()
	return s.GetProfile(ctx, userID)
}

func (s *Store) UpdateAvatarURL(ctx context.Context, userID uuid.UUID, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Profiles[userID]
	if !ok {
		return models.ErrNotFound
	}
	p.AvatarURL.String, p.AvatarURL.Valid = avatarURL, true
	return nil
}

func (s *Store) CreateSession(ctx context.Context, userID uuid.UUID, name string, metadata map[string]interface{}) (*models.GenerationSession, error) {
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &models.GenerationSession{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    models.SessionPending,
		Metadata:  raw,
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	sess.SessionName.String, sess.SessionName.Valid = name, name != ""
	s.Sessions[sess.ID] = sess
	s.StatusHistory[sess.ID] = []string{models.SessionPending}
	cp := *sess
	return &cp, nil
}

func (s *Store) GetSession(ctx context.Context, sessionID, userID uuid.UUID) (*models.GenerationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.Sessions[sessionID]
	if !ok || sess.UserID != userID {
		return nil, models.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *Store) ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.GenerationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.GenerationSession
	for _, sess := range s.Sessions {
		if sess.UserID != userID {
			continue
		}
		cp := *sess
		for _, img := range s.Images {
			if img.SessionID == sess.ID {
				cp.Images = append(cp.Images, img)
			}
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) UpdateSessionStatus(ctx context.Context, sessionID uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.Sessions[sessionID]
	if !ok {
		return models.ErrNotFound
	}
	sess.Status = status
	s.StatusHistory[sessionID] = append(s.StatusHistory[sessionID], status)
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, sessionID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.Sessions[sessionID]
	if !ok || sess.UserID != userID {
		return models.ErrNotFound
	}
	delete(s.Sessions, sessionID)
	kept := s.Images[:0]
	for _, img := range s.Images {
		if img.SessionID != sessionID {
			kept = append(kept, img)
		}
	}
	s.Images = kept
	for i := range s.UsageLogs {
		if s.UsageLogs[i].SessionID.Valid && s.UsageLogs[i].SessionID.UUID == sessionID {
			s.UsageLogs[i].SessionID = uuid.NullUUID{}
		}
	}
	return nil
}

func (s *Store) CreateGeneratedImage(ctx context.Context, img *models.GeneratedImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateImageErr != nil {
		return s.CreateImageErr
	}
	img.ID = uuid.New()
	img.CreatedAt = s.now
	s.Images = append(s.Images, *img)
	return nil
}

func (s *Store) ListSessionImages(ctx context.Context, sessionID, userID uuid.UUID) ([]models.GeneratedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.GeneratedImage
	for _, img := range s.Images {
		if img.SessionID == sessionID && img.UserID == userID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (s *Store) ListUsageLogs(ctx context.Context, userID uuid.UUID, limit int) ([]models.UsageLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.UsageLog
	for _, l := range s.UsageLogs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ChargeCredits(ctx context.Context, charge models.CreditCharge) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ChargeErr != nil {
		return nil, s.ChargeErr
	}
	p, ok := s.Profiles[charge.UserID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if p.CreditsTotal-p.CreditsUsed < charge.Credits {
		return nil, models.ErrInsufficientCredits
	}
	p.CreditsUsed += charge.Credits
	if sess, ok := s.Sessions[charge.SessionID]; ok {
		sess.CreditsUsed += charge.Credits
	}
	meta, _ := json.Marshal(charge.Metadata)
	s.UsageLogs = append(s.UsageLogs, models.UsageLog{
		ID:          uuid.New(),
		UserID:      charge.UserID,
		SessionID:   uuid.NullUUID{UUID: charge.SessionID, Valid: true},
		Action:      charge.Action,
		CreditsUsed: charge.Credits,
		Metadata:    meta,
		CreatedAt:   s.now,
	})
	cp := *p
	return &cp, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.PingErr
}

// ImageStore keeps uploaded objects in memory.
type ImageStore struct {
	mu sync.Mutex

	BaseURL string
	Objects map[string][]byte
	Removed []string

	// FailUploads names paths whose upload fails; "*" fails every upload.
	FailUploads map[string]bool
	RemoveErr   error
}

func NewImageStore() *ImageStore {
	return &ImageStore{
		BaseURL:     "https://example.supabase.co/storage/v1/object/public/generated-images",
		Objects:     make(map[string][]byte),
		FailUploads: make(map[string]bool),
	}
}

func (s *ImageStore) UploadGeneratedImage(storagePath string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUploads["*"] || s.FailUploads[storagePath] {
		return "", fmt.Errorf("failed to upload file: %s", storagePath)
	}
	if _, exists := s.Objects[storagePath]; exists {
		return "", errors.New("failed to upload file: the resource already exists")
	}
	s.Objects[storagePath] = data
	return s.BaseURL + "/" + storagePath, nil
}

func (s *ImageStore) RemoveFile(storagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, storagePath)
	s.Removed = append(s.Removed, storagePath)
	return nil
}

func (s *ImageStore) RemoveSessionFiles(userID, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	prefix := userID.String() + "/" + sessionID.String() + "/"
	for p := range s.Objects {
		if strings.HasPrefix(p, prefix) {
			delete(s.Objects, p)
			s.Removed = append(s.Removed, p)
		}
	}
	return nil
}

func (s *ImageStore) UploadAvatar(userID uuid.UUID, ext, contentType string, data []byte, unixMilli int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUploads["*"] {
		return "", errors.New("failed to upload avatar")
	}
	storagePath := fmt.Sprintf("avatars/%s-%d.%s", userID, unixMilli, ext)
	s.Objects[storagePath] = data
	return s.BaseURL + "/" + storagePath, nil
}

// Len returns the number of stored objects.
func (s *ImageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Objects)
}

// Event is one recorded broadcast.
type Event struct {
	Topic   string
	Event   string
	Payload map[string]interface{}
}

// Broadcaster records published events.
type Broadcaster struct {
	mu     sync.Mutex
	Events []Event
}

func (b *Broadcaster) PublishSessionEvent(ctx context.Context, sessionID uuid.UUID, event string, payload map[string]interface{}) error {
	b.record("session:"+sessionID.String(), event, payload)
	return nil
}

func (b *Broadcaster) PublishUserEvent(ctx context.Context, userID uuid.UUID, event string, payload map[string]interface{}) error {
	b.record("user:"+userID.String(), event, payload)
	return nil
}

func (b *Broadcaster) record(topic, event string, payload map[string]interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, Event{Topic: topic, Event: event, Payload: payload})
}

// Names returns the recorded event names in order.
func (b *Broadcaster) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(b.Events))
	for i, e := range b.Events {
		names[i] = e.Event
	}
	return names
}

// CreditChecker answers from a fixed result.
type CreditChecker struct {
	Allowed bool
	Err     error

	Calls []int
}

func (c *CreditChecker) CheckUserCredits(userID uuid.UUID, required int) (bool, error) {
	c.Calls = append(c.Calls, required)
	return c.Allowed, c.Err
}

// StatsReader returns fixed statistics.
type StatsReader struct {
	Stats *models.UserStatistics
	Err   error
}

func (r *StatsReader) GetUserStatistics(userID uuid.UUID) (*models.UserStatistics, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Stats, nil
}

// Generator is a scripted AI backend.
type Generator struct {
	mu sync.Mutex

	ValidateResp *aibackend.ValidateResponse
	ValidateErr  error
	ProcessResp  *aibackend.ProcessResponse
	ProcessErr   error

	ValidateCalls []aibackend.ValidateRequest
	ProcessCalls  []aibackend.ProcessRequest
}

func (g *Generator) Validate(ctx context.Context, req aibackend.ValidateRequest) (*aibackend.ValidateResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ValidateCalls = append(g.ValidateCalls, req)
	if g.ValidateErr != nil {
		return nil, g.ValidateErr
	}
	return g.ValidateResp, nil
}

func (g *Generator) Process(ctx context.Context, req aibackend.ProcessRequest) (*aibackend.ProcessResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ProcessCalls = append(g.ProcessCalls, req)
	if g.ProcessErr != nil {
		return nil, g.ProcessErr
	}
	return g.ProcessResp, nil
}
