package models

import (
	"time"

	"visual-god-backend/internal/platform"
)

type ProfileResponse struct {
	ID               string    `json:"id"`
	Username         string    `json:"username,omitempty"`
	FullName         string    `json:"full_name,omitempty"`
	AvatarURL        string    `json:"avatar_url,omitempty"`
	Email            string    `json:"email,omitempty"`
	Plan             string    `json:"plan"`
	CreditsTotal     int       `json:"credits_total"`
	CreditsUsed      int       `json:"credits_used"`
	CreditsRemaining int       `json:"credits_remaining"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type SessionResponse struct {
	ID          string                 `json:"id"`
	SessionName string                 `json:"session_name,omitempty"`
	Status      string                 `json:"status"`
	CreditsUsed int                    `json:"credits_used"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Images      []ImageResponse        `json:"generated_images,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

type SessionStatusResponse struct {
	SessionID   string    `json:"session_id"`
	Status      string    `json:"status"`
	CreditsUsed int       `json:"credits_used"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ImageResponse struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	StorageURL  string    `json:"storage_url,omitempty"`
	FileSize    int64     `json:"file_size,omitempty"`
	MimeType    string    `json:"mime_type,omitempty"`
	PromptText  string    `json:"prompt_text,omitempty"`
	PromptIndex int64     `json:"prompt_index"`
	Platform    string    `json:"platform,omitempty"`
	Size        string    `json:"size,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ImagesResponse struct {
	Images []ImageResponse `json:"images"`
}

type UsageLogResponse struct {
	ID          string                 `json:"id"`
	SessionID   string                 `json:"session_id,omitempty"`
	Action      string                 `json:"action"`
	CreditsUsed int                    `json:"credits_used"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

type DailyUsage struct {
	Date    string `json:"date" example:"2026-10-14"`
	Credits int    `json:"credits"`
}

type StatsResponse struct {
	Stats      UserStatistics     `json:"stats"`
	Usage      []UsageLogResponse `json:"usage"`
	DailyUsage []DailyUsage       `json:"daily_usage"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type PlatformsResponse struct {
	Platforms []platform.Format `json:"platforms"`
	Plans     []platform.Plan   `json:"plans"`
}
