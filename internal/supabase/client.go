package supabase

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
	"visual-god-backend/internal/models"
	"visual-god-backend/internal/platform"
)

// Client talks to the Supabase REST layer for the pieces that live in the
// database as functions and views.
type Client struct {
	url string
	key string

	mu       sync.Mutex
	supabase *supabase.Client
}

func NewClient(url, serviceKey string) (*Client, error) {
	client, err := supabase.NewClient(url, serviceKey, nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		url:      url,
		key:      serviceKey,
		supabase: client,
	}, nil
}

func (c *Client) rest() *supabase.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.supabase
}

// reset replaces the underlying client. A failed Rpc leaves a sticky error
// on the REST client that poisons every later query.
func (c *Client) reset() {
	client, err := supabase.NewClient(c.url, c.key, nil)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.supabase = client
	c.mu.Unlock()
}

// CheckUserCredits calls the check_user_credits database function.
func (c *Client) CheckUserCredits(userID uuid.UUID, required int) (bool, error) {
	result := strings.TrimSpace(c.rest().Rpc("check_user_credits", "", map[string]interface{}{
		"user_id":          userID.String(),
		"required_credits": required,
	}))

	switch result {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "":
		c.reset()
		return false, fmt.Errorf("check_user_credits: request failed")
	default:
		return false, fmt.Errorf("check_user_credits: unexpected response: %s", truncate(result, 200))
	}
}

// GetUserStatistics reads the user's row from the user_statistics view. A
// user without a row yet gets the free plan defaults.
func (c *Client) GetUserStatistics(userID uuid.UUID) (*models.UserStatistics, error) {
	body, _, err := c.rest().From("user_statistics").
		Select("*", "", false).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to read user statistics: %w", err)
	}

	var rows []models.UserStatistics
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode user statistics: %w", err)
	}
	if len(rows) == 0 {
		return DefaultStatistics(userID), nil
	}
	return &rows[0], nil
}

func DefaultStatistics(userID uuid.UUID) *models.UserStatistics {
	free := platform.PlanFor(platform.PlanFree)
	return &models.UserStatistics{
		UserID:           userID.String(),
		Plan:             free.Name,
		CreditsTotal:     free.MonthlyCredits,
		CreditsRemaining: free.MonthlyCredits,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
