package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Session statuses, matching the generation_status enum.
const (
	SessionPending    = "pending"
	SessionProcessing = "processing"
	SessionCompleted  = "completed"
	SessionFailed     = "failed"
)

// UsageActionImageGeneration is the usage_logs action recorded for a charge.
const UsageActionImageGeneration = "image_generation"

type GenerationSession struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	SessionName sql.NullString
	Status      string
	CreditsUsed int
	Metadata    json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Images is only populated by queries that join generated_images.
	Images []GeneratedImage
}

type GeneratedImage struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	UserID      uuid.UUID
	Filename    string
	FilePath    string
	FileSize    sql.NullInt64
	MimeType    sql.NullString
	PromptText  sql.NullString
	PromptIndex sql.NullInt64
	Platform    sql.NullString
	Size        sql.NullString
	Metadata    json.RawMessage
	CreatedAt   time.Time
}

// PublicURL returns the storage URL recorded in the image metadata.
func (g *GeneratedImage) PublicURL() string {
	var meta struct {
		PublicURL string `json:"public_url"`
	}
	if len(g.Metadata) == 0 {
		return ""
	}
	if err := json.Unmarshal(g.Metadata, &meta); err != nil {
		return ""
	}
	return meta.PublicURL
}

type UsageLog struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	SessionID   uuid.NullUUID
	Action      string
	CreditsUsed int
	Metadata    json.RawMessage
	CreatedAt   time.Time
}

// CreditCharge is one deduction: the profile, the session and the usage log
// are written together or not at all.
type CreditCharge struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	Credits   int
	Action    string
	Metadata  map[string]interface{}
}
