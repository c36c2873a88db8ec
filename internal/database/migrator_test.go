package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"visual-god-backend/internal/database"
)

func TestMigrations_Ordered(t *testing.T) {
	names, err := database.Migrations()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"001_initial_schema.sql",
		"002_credits_and_stats.sql",
		"003_new_user_profile.sql",
	}, names)
}
