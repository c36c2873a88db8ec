package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"
	"visual-god-backend/internal/models"
)

const (
	statsUsageLimit = 30
	statsDailyDays  = 7
)

type StatsService struct {
	reader StatsReader
	store  Store
}

func NewStatsService(reader StatsReader, store Store) *StatsService {
	return &StatsService{reader: reader, store: store}
}

type Stats struct {
	Summary    models.UserStatistics
	Usage      []models.UsageLog
	DailyUsage []models.DailyUsage
}

// Get returns the user's totals, their latest usage and the per-day credit
// spend. When the statistics view is unreachable the totals are rebuilt from
// the profile alone.
func (s *StatsService) Get(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	logs, err := s.store.ListUsageLogs(ctx, userID, statsUsageLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage: %w", err)
	}

	summary, err := s.summary(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Summary:    *summary,
		Usage:      logs,
		DailyUsage: DailyUsage(logs, statsDailyDays),
	}, nil
}

func (s *StatsService) summary(ctx context.Context, userID uuid.UUID) (*models.UserStatistics, error) {
	if s.reader != nil {
		stats, err := s.reader.GetUserStatistics(userID)
		if err == nil {
			return stats, nil
		}
		log.Printf("Failed to read user statistics for %s, using profile: %v", userID, err)
	}

	profile, err := s.store.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	stats := &models.UserStatistics{
		UserID:           userID.String(),
		Plan:             profile.Plan,
		CreditsTotal:     profile.CreditsTotal,
		CreditsUsed:      profile.CreditsUsed,
		CreditsRemaining: profile.CreditsRemaining(),
	}
	if profile.Username.Valid {
		stats.Username = &profile.Username.String
	}
	return stats, nil
}

// DailyUsage sums credits per UTC calendar day and keeps the newest days,
// returned oldest first.
func DailyUsage(logs []models.UsageLog, days int) []models.DailyUsage {
	totals := make(map[string]int)
	for _, l := range logs {
		totals[l.CreatedAt.UTC().Format("2006-01-02")] += l.CreditsUsed
	}

	dates := make([]string, 0, len(totals))
	for d := range totals {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if len(dates) > days {
		dates = dates[len(dates)-days:]
	}

	out := make([]models.DailyUsage, len(dates))
	for i, d := range dates {
		out[i] = models.DailyUsage{Date: d, Credits: totals[d]}
	}
	return out
}
