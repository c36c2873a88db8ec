package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"visual-god-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

const profileColumns = `id, username, full_name, avatar_url, plan, credits_total, credits_used,
	stripe_customer_id, created_at, updated_at`

const sessionColumns = `id, user_id, session_name, status, credits_used, metadata, created_at, updated_at`

const imageColumns = `id, session_id, user_id, filename, file_path, file_size, mime_type,
	prompt_text, prompt_index, platform, size, metadata, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.Plan,
		&p.CreditsTotal, &p.CreditsUsed, &p.StripeCustomerID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanSession(row rowScanner) (*models.GenerationSession, error) {
	var s models.GenerationSession
	err := row.Scan(
		&s.ID, &s.UserID, &s.SessionName, &s.Status, &s.CreditsUsed,
		(*[]byte)(&s.Metadata), &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanImage(row rowScanner) (*models.GeneratedImage, error) {
	var img models.GeneratedImage
	err := row.Scan(
		&img.ID, &img.SessionID, &img.UserID, &img.Filename, &img.FilePath,
		&img.FileSize, &img.MimeType, &img.PromptText, &img.PromptIndex,
		&img.Platform, &img.Size, (*[]byte)(&img.Metadata), &img.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

func marshalMetadata(metadata map[string]interface{}) ([]byte, error) {
	if metadata == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(metadata)
}

func (d *DatabaseClient) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, err := scanProfile(d.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", notFound(err))
	}
	return p, nil
}

// EnsureProfile returns the user's profile, creating a free one when the
// signup trigger has not produced it yet.
func (d *DatabaseClient) EnsureProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO profiles (id)
		VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}
	return d.GetProfile(ctx, userID)
}

// UpdateProfile sets the fields that are non-nil. An empty string clears the
// field.
func (d *DatabaseClient) UpdateProfile(ctx context.Context, userID uuid.UUID, username, fullName *string) (*models.Profile, error) {
	p, err := scanProfile(d.db.QueryRowContext(ctx, `
		UPDATE profiles
		SET username = CASE WHEN $2::text IS NULL THEN username ELSE NULLIF($2::text, '') END,
		    full_name = CASE WHEN $3::text IS NULL THEN full_name ELSE NULLIF($3::text, '') END
		WHERE id = $1
		RETURNING `+profileColumns,
		userID, username, fullName))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("failed to update profile: %w", models.ErrUsernameTaken)
		}
		return nil, fmt.Errorf("failed to update profile: %w", notFound(err))
	}
	return p, nil
}

func (d *DatabaseClient) UpdateAvatarURL(ctx context.Context, userID uuid.UUID, avatarURL string) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE profiles
		SET avatar_url = $1
		WHERE id = $2
	`, avatarURL, userID)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to update avatar: %w", models.ErrNotFound)
	}
	return nil
}

func (d *DatabaseClient) CreateSession(ctx context.Context, userID uuid.UUID, name string, metadata map[string]interface{}) (*models.GenerationSession, error) {
	metadataJSON, err := marshalMetadata(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	s, err := scanSession(d.db.QueryRowContext(ctx, `
		INSERT INTO generation_sessions (user_id, session_name, status, metadata)
		VALUES ($1, NULLIF($2, ''), $3, $4)
		RETURNING `+sessionColumns,
		userID, name, models.SessionPending, metadataJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

func (d *DatabaseClient) GetSession(ctx context.Context, sessionID, userID uuid.UUID) (*models.GenerationSession, error) {
	s, err := scanSession(d.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM generation_sessions
		WHERE id = $1 AND user_id = $2
	`, sessionID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", notFound(err))
	}
	return s, nil
}

// ListSessions returns the newest sessions with their images attached.
func (d *DatabaseClient) ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.GenerationSession, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM generation_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.GenerationSession, 0)
	index := make(map[uuid.UUID]int)
	ids := make([]string, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		index[s.ID] = len(sessions)
		ids = append(ids, s.ID.String())
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	imageRows, err := d.db.QueryContext(ctx, `
		SELECT `+imageColumns+`
		FROM generated_images
		WHERE session_id = ANY($1::uuid[])
		ORDER BY created_at ASC
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list session images: %w", err)
	}
	defer imageRows.Close()

	for imageRows.Next() {
		img, err := scanImage(imageRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		if i, ok := index[img.SessionID]; ok {
			sessions[i].Images = append(sessions[i].Images, *img)
		}
	}
	if err := imageRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list session images: %w", err)
	}

	return sessions, nil
}

func (d *DatabaseClient) UpdateSessionStatus(ctx context.Context, sessionID uuid.UUID, status string) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE generation_sessions
		SET status = $1
		WHERE id = $2
	`, status, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return nil
}

func (d *DatabaseClient) DeleteSession(ctx context.Context, sessionID, userID uuid.UUID) error {
	res, err := d.db.ExecContext(ctx, `
		DELETE FROM generation_sessions
		WHERE id = $1 AND user_id = $2
	`, sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to delete session: %w", models.ErrNotFound)
	}
	return nil
}

// CreateGeneratedImage inserts img and fills in its ID and CreatedAt.
func (d *DatabaseClient) CreateGeneratedImage(ctx context.Context, img *models.GeneratedImage) error {
	metadata := []byte(img.Metadata)
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}

	err := d.db.QueryRowContext(ctx, `
		INSERT INTO generated_images (session_id, user_id, filename, file_path, file_size, mime_type,
			prompt_text, prompt_index, platform, size, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`, img.SessionID, img.UserID, img.Filename, img.FilePath, img.FileSize, img.MimeType,
		img.PromptText, img.PromptIndex, img.Platform, img.Size, metadata,
	).Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create generated image: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListSessionImages(ctx context.Context, sessionID, userID uuid.UUID) ([]models.GeneratedImage, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+imageColumns+`
		FROM generated_images
		WHERE session_id = $1 AND user_id = $2
		ORDER BY prompt_index ASC NULLS LAST, created_at ASC
	`, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	images := make([]models.GeneratedImage, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

func (d *DatabaseClient) ListUsageLogs(ctx context.Context, userID uuid.UUID, limit int) ([]models.UsageLog, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, user_id, session_id, action, credits_used, metadata, created_at
		FROM usage_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage logs: %w", err)
	}
	defer rows.Close()

	logs := make([]models.UsageLog, 0)
	for rows.Next() {
		var l models.UsageLog
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.SessionID, &l.Action, &l.CreditsUsed,
			(*[]byte)(&l.Metadata), &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan usage log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ChargeCredits deducts credits from the profile, adds them to the session
// and appends the usage log in one transaction. The profile update only
// matches while enough credits remain, so concurrent charges cannot
// overspend.
func (d *DatabaseClient) ChargeCredits(ctx context.Context, charge models.CreditCharge) (*models.Profile, error) {
	metadataJSON, err := marshalMetadata(charge.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	profile, err := scanProfile(tx.QueryRowContext(ctx, `
		UPDATE profiles
		SET credits_used = credits_used + $2
		WHERE id = $1 AND credits_total - credits_used >= $2
		RETURNING `+profileColumns,
		charge.UserID, charge.Credits))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrInsufficientCredits
	}
	if err != nil {
		return nil, fmt.Errorf("failed to deduct credits: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE generation_sessions
		SET credits_used = credits_used + $1
		WHERE id = $2 AND user_id = $3
	`, charge.Credits, charge.SessionID, charge.UserID); err != nil {
		return nil, fmt.Errorf("failed to update session credits: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO usage_logs (user_id, session_id, action, credits_used, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`, charge.UserID, charge.SessionID, charge.Action, charge.Credits, metadataJSON); err != nil {
		return nil, fmt.Errorf("failed to insert usage log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit charge: %w", err)
	}
	return profile, nil
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
