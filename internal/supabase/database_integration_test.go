//go:build integration

package supabase_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"visual-god-backend/internal/database"
	"visual-god-backend/internal/models"
	"visual-god-backend/internal/supabase"
)

// newTestDatabase connects to a Supabase Postgres (the auth schema must
// exist) and creates a fresh auth user whose profile the signup trigger
// provisions.
func newTestDatabase(t *testing.T) (context.Context, *supabase.DatabaseClient, uuid.UUID) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.Open(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db).Run(ctx))

	userID := uuid.New()
	_, err = db.ExecContext(ctx, `INSERT INTO auth.users (id) VALUES ($1)`, userID)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.ExecContext(context.Background(), `DELETE FROM auth.users WHERE id = $1`, userID)
	})

	return ctx, supabase.NewDatabaseClient(db), userID
}

func TestIntegrationDatabase_ProfileDefaults(t *testing.T) {
	ctx, store, userID := newTestDatabase(t)

	profile, err := store.EnsureProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "free", profile.Plan)
	assert.Equal(t, 10, profile.CreditsTotal)
	assert.Equal(t, 0, profile.CreditsUsed)

	name := "ada"
	profile, err = store.UpdateProfile(ctx, userID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, "ada", profile.Username.String)
	assert.False(t, profile.FullName.Valid)
}

func TestIntegrationDatabase_ChargeCredits(t *testing.T) {
	ctx, store, userID := newTestDatabase(t)

	session, err := store.CreateSession(ctx, userID, "Test", nil)
	require.NoError(t, err)

	profile, err := store.ChargeCredits(ctx, models.CreditCharge{
		UserID:    userID,
		SessionID: session.ID,
		Credits:   6,
		Action:    models.UsageActionImageGeneration,
		Metadata:  map[string]interface{}{"platform": "instagram", "image_count": 6},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, profile.CreditsUsed)

	_, err = store.ChargeCredits(ctx, models.CreditCharge{
		UserID:    userID,
		SessionID: session.ID,
		Credits:   5,
		Action:    models.UsageActionImageGeneration,
	})
	assert.True(t, errors.Is(err, models.ErrInsufficientCredits))

	session, err = store.GetSession(ctx, session.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 6, session.CreditsUsed)

	logs, err := store.ListUsageLogs(ctx, userID, 30)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 6, logs[0].CreditsUsed)
}

func TestIntegrationDatabase_SessionsWithImages(t *testing.T) {
	ctx, store, userID := newTestDatabase(t)

	session, err := store.CreateSession(ctx, userID, "", map[string]interface{}{"source": "test"})
	require.NoError(t, err)
	assert.Equal(t, models.SessionPending, session.Status)

	img := &models.GeneratedImage{
		SessionID: session.ID,
		UserID:    userID,
		Filename:  "a.jpg",
		FilePath:  "u/s/a.jpg",
		Metadata:  []byte(`{"public_url": "https://example.com/a.jpg"}`),
	}
	require.NoError(t, store.CreateGeneratedImage(ctx, img))
	assert.NotEqual(t, uuid.Nil, img.ID)

	sessions, err := store.ListSessions(ctx, userID, 50)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Len(t, sessions[0].Images, 1)
	assert.Equal(t, "https://example.com/a.jpg", sessions[0].Images[0].PublicURL())

	require.NoError(t, store.DeleteSession(ctx, session.ID, userID))
	_, err = store.GetSession(ctx, session.ID, userID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
