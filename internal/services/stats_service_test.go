package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"visual-god-backend/internal/models"
	"visual-god-backend/internal/platform"
	"visual-god-backend/internal/services"
	"visual-god-backend/internal/storetest"
)

func TestDailyUsage(t *testing.T) {
	day := func(d, h int) time.Time {
		return time.Date(2026, 10, d, h, 0, 0, 0, time.UTC)
	}
	var logs []models.UsageLog
	for d := 1; d <= 9; d++ {
		logs = append(logs, models.UsageLog{CreditsUsed: d, CreatedAt: day(d, 10)})
	}
	logs = append(logs, models.UsageLog{CreditsUsed: 5, CreatedAt: day(9, 23)})

	got := services.DailyUsage(logs, 7)
	require.Len(t, got, 7)
	assert.Equal(t, "2026-10-03", got[0].Date)
	assert.Equal(t, "2026-10-09", got[6].Date)
	assert.Equal(t, 14, got[6].Credits)
}

func TestDailyUsage_GroupsByUTCDay(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	logs := []models.UsageLog{
		// 22:00 EST on the 13th is the 14th in UTC.
		{CreditsUsed: 2, CreatedAt: time.Date(2026, 10, 13, 22, 0, 0, 0, est)},
		{CreditsUsed: 3, CreatedAt: time.Date(2026, 10, 14, 1, 0, 0, 0, time.UTC)},
	}

	got := services.DailyUsage(logs, 7)
	require.Len(t, got, 1)
	assert.Equal(t, models.DailyUsage{Date: "2026-10-14", Credits: 5}, got[0])
}

func TestDailyUsage_Empty(t *testing.T) {
	assert.Empty(t, services.DailyUsage(nil, 7))
}

func TestStatsService_Get(t *testing.T) {
	store := storetest.NewStore()
	userID := uuid.New()
	store.AddUsage(userID, 3, time.Date(2026, 10, 12, 8, 0, 0, 0, time.UTC))
	store.AddUsage(userID, 2, time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC))
	store.AddUsage(uuid.New(), 9, time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC))

	reader := &storetest.StatsReader{Stats: &models.UserStatistics{
		UserID:               userID.String(),
		Plan:                 platform.PlanPro,
		CreditsTotal:         500,
		CreditsUsed:          5,
		CreditsRemaining:     495,
		TotalImagesGenerated: 5,
	}}

	stats, err := services.NewStatsService(reader, store).Get(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, 495, stats.Summary.CreditsRemaining)
	require.Len(t, stats.Usage, 2)
	assert.Equal(t, 2, stats.Usage[0].CreditsUsed)
	assert.Equal(t, []models.DailyUsage{
		{Date: "2026-10-12", Credits: 3},
		{Date: "2026-10-14", Credits: 2},
	}, stats.DailyUsage)
}

func TestStatsService_FallsBackToProfile(t *testing.T) {
	store := storetest.NewStore()
	userID := uuid.New()
	store.AddProfile(userID, platform.PlanStarter, 100, 40)

	reader := &storetest.StatsReader{Err: errors.New("view unavailable")}

	stats, err := services.NewStatsService(reader, store).Get(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, userID.String(), stats.Summary.UserID)
	assert.Equal(t, platform.PlanStarter, stats.Summary.Plan)
	assert.Equal(t, 60, stats.Summary.CreditsRemaining)
	assert.Empty(t, stats.Usage)
	assert.Empty(t, stats.DailyUsage)
}
