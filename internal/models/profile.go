package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID               uuid.UUID
	Username         sql.NullString
	FullName         sql.NullString
	AvatarURL        sql.NullString
	Plan             string
	CreditsTotal     int
	CreditsUsed      int
	StripeCustomerID sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (p *Profile) CreditsRemaining() int {
	remaining := p.CreditsTotal - p.CreditsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// UserStatistics mirrors a row of the user_statistics view.
type UserStatistics struct {
	UserID               string  `json:"user_id"`
	Username             *string `json:"username"`
	Plan                 string  `json:"plan"`
	CreditsTotal         int     `json:"credits_total"`
	CreditsUsed          int     `json:"credits_used"`
	CreditsRemaining     int     `json:"credits_remaining"`
	TotalSessions        int     `json:"total_sessions"`
	TotalImagesGenerated int     `json:"total_images_generated"`
	TotalProductsScanned int     `json:"total_products_scanned"`
}
