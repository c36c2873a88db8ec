package supabase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"visual-god-backend/internal/supabase"
)

func TestRealtimeClient_PublishSessionEvent(t *testing.T) {
	sessionID := uuid.New()

	var body struct {
		Messages []struct {
			Topic   string                 `json:"topic"`
			Event   string                 `json:"event"`
			Payload map[string]interface{} `json:"payload"`
		} `json:"messages"`
	}
	var apiKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/realtime/v1/api/broadcast", r.URL.Path)
		apiKey = r.Header.Get("apikey")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := supabase.NewRealtimeClient(server.URL, "service-key")
	err := client.PublishSessionEvent(context.Background(), sessionID, supabase.EventProcessingFailed,
		supabase.ProcessingFailedPayload(sessionID, "boom"))
	require.NoError(t, err)

	assert.Equal(t, "service-key", apiKey)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "session:"+sessionID.String(), body.Messages[0].Topic)
	assert.Equal(t, "processing_failed", body.Messages[0].Event)
	assert.Equal(t, "boom", body.Messages[0].Payload["error"])
}

func TestRealtimeClient_PublishEvent_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := supabase.NewRealtimeClient(server.URL, "bad-key")
	err := client.PublishUserEvent(context.Background(), uuid.New(), supabase.EventCreditsUpdated,
		supabase.CreditsUpdatedPayload(10, 4))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestCreditsUpdatedPayload(t *testing.T) {
	payload := supabase.CreditsUpdatedPayload(10, 12)
	assert.Equal(t, 0, payload["credits_remaining"])

	payload = supabase.CreditsUpdatedPayload(100, 40)
	assert.Equal(t, 60, payload["credits_remaining"])
}
