package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RealtimeClient publishes broadcast messages through the Realtime REST
// endpoint. Subscribers listen on the session:<id> and user:<id> topics.
type RealtimeClient struct {
	endpoint   string
	serviceKey string
	httpClient *http.Client
}

func NewRealtimeClient(supabaseURL, serviceKey string) *RealtimeClient {
	return &RealtimeClient{
		endpoint:   strings.TrimSuffix(supabaseURL, "/") + "/realtime/v1/api/broadcast",
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type broadcastMessage struct {
	Topic   string                 `json:"topic"`
	Event   string                 `json:"event"`
	Payload map[string]interface{} `json:"payload"`
}

func (r *RealtimeClient) PublishEvent(ctx context.Context, topic string, event string, payload map[string]interface{}) error {
	body, err := json.Marshal(map[string][]broadcastMessage{
		"messages": {{Topic: topic, Event: event, Payload: payload}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", r.serviceKey)
	req.Header.Set("Authorization", "Bearer "+r.serviceKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("failed to publish %s: status %d: %s", event, resp.StatusCode, string(msg))
	}
	return nil
}

func (r *RealtimeClient) PublishSessionEvent(ctx context.Context, sessionID uuid.UUID, event string, payload map[string]interface{}) error {
	return r.PublishEvent(ctx, SessionTopic(sessionID), event, payload)
}

func (r *RealtimeClient) PublishUserEvent(ctx context.Context, userID uuid.UUID, event string, payload map[string]interface{}) error {
	return r.PublishEvent(ctx, UserTopic(userID), event, payload)
}

func SessionTopic(sessionID uuid.UUID) string {
	return "session:" + sessionID.String()
}

func UserTopic(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// Event names
const (
	EventProcessingStarted   = "processing_started"
	EventProcessingCompleted = "processing_completed"
	EventProcessingFailed    = "processing_failed"
	EventCreditsUpdated      = "credits_updated"
)

// Event payloads
func ProcessingStartedPayload(sessionID uuid.UUID, imageCount int, platform string) map[string]interface{} {
	return map[string]interface{}{
		"session_id":  sessionID.String(),
		"status":      "processing",
		"image_count": imageCount,
		"platform":    platform,
	}
}

func ProcessingCompletedPayload(sessionID uuid.UUID, generated, stored, creditsCharged int) map[string]interface{} {
	return map[string]interface{}{
		"session_id":      sessionID.String(),
		"status":          "completed",
		"generated_count": generated,
		"stored_count":    stored,
		"credits_charged": creditsCharged,
	}
}

func ProcessingFailedPayload(sessionID uuid.UUID, errorMsg string) map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionID.String(),
		"status":     "failed",
		"error":      errorMsg,
	}
}

func CreditsUpdatedPayload(creditsTotal, creditsUsed int) map[string]interface{} {
	remaining := creditsTotal - creditsUsed
	if remaining < 0 {
		remaining = 0
	}
	return map[string]interface{}{
		"credits_total":     creditsTotal,
		"credits_used":      creditsUsed,
		"credits_remaining": remaining,
	}
}
