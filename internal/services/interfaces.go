package services

import (
	"context"

	"github.com/google/uuid"
	"visual-god-backend/internal/aibackend"
	"visual-god-backend/internal/models"
)

// Store is the persistence the services and handlers need. The Postgres
// DatabaseClient implements it.
type Store interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	EnsureProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, username, fullName *string) (*models.Profile, error)
	UpdateAvatarURL(ctx context.Context, userID uuid.UUID, avatarURL string) error

	CreateSession(ctx context.Context, userID uuid.UUID, name string, metadata map[string]interface{}) (*models.GenerationSession, error)
	GetSession(ctx context.Context, sessionID, userID uuid.UUID) (*models.GenerationSession, error)
	ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.GenerationSession, error)
	UpdateSessionStatus(ctx context.Context, sessionID uuid.UUID, status string) error
	DeleteSession(ctx context.Context, sessionID, userID uuid.UUID) error

	CreateGeneratedImage(ctx context.Context, img *models.GeneratedImage) error
	ListSessionImages(ctx context.Context, sessionID, userID uuid.UUID) ([]models.GeneratedImage, error)

	ListUsageLogs(ctx context.Context, userID uuid.UUID, limit int) ([]models.UsageLog, error)
	ChargeCredits(ctx context.Context, charge models.CreditCharge) (*models.Profile, error)

	Ping(ctx context.Context) error
}

type ImageStore interface {
	UploadGeneratedImage(storagePath string, data []byte) (string, error)
	RemoveFile(storagePath string) error
	RemoveSessionFiles(userID, sessionID uuid.UUID) error
}

type AvatarStore interface {
	UploadAvatar(userID uuid.UUID, ext, contentType string, data []byte, unixMilli int64) (string, error)
}

type CreditChecker interface {
	CheckUserCredits(userID uuid.UUID, required int) (bool, error)
}

type StatsReader interface {
	GetUserStatistics(userID uuid.UUID) (*models.UserStatistics, error)
}

type Broadcaster interface {
	PublishSessionEvent(ctx context.Context, sessionID uuid.UUID, event string, payload map[string]interface{}) error
	PublishUserEvent(ctx context.Context, userID uuid.UUID, event string, payload map[string]interface{}) error
}

// Generator is the remote AI backend.
type Generator interface {
	Validate(ctx context.Context, req aibackend.ValidateRequest) (*aibackend.ValidateResponse, error)
	Process(ctx context.Context, req aibackend.ProcessRequest) (*aibackend.ProcessResponse, error)
}
