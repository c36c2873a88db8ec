package aibackend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"visual-god-backend/internal/aibackend"
)

func newClient(url string) *aibackend.Client {
	client := aibackend.NewClient(url, "test-key", 2*time.Second, 2*time.Second)
	client.SetBackoff(time.Millisecond, time.Millisecond, time.Millisecond)
	return client
}

func TestClient_RetryWithBackoff(t *testing.T) {
	client := newClient("https://api.test.com")

	callCount := 0
	err := client.RetryWithBackoff(context.Background(), func() error {
		callCount++
		if callCount < 3 {
			return assert.AnError
		}
		return nil
	}, 3)

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
}

func TestClient_RetryWithBackoff_Exhausted(t *testing.T) {
	client := newClient("https://api.test.com")

	err := client.RetryWithBackoff(context.Background(), func() error {
		return assert.AnError
	}, 3)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 retries")
}

func TestClient_Process(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/process", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		var req aibackend.ProcessRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user-1", req.UserID)
		assert.Equal(t, "youtube", req.ImageSize)
		assert.True(t, req.GenerateImages)
		assert.Len(t, req.Images, 1)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"message": "Successfully processed 1 product(s)",
			"generated_images": [{"prompt": "p", "image_base64": "aGk=", "index": 0, "product_name": "Red Shoe", "prompt_type": "style_1"}],
			"image_format": "2560x1440",
			"current_step": "processing_complete"
		}`))
	}))
	defer server.Close()

	resp, err := newClient(server.URL).Process(context.Background(), aibackend.ProcessRequest{
		Images:         []aibackend.Image{{Base64: "aGk=", Filename: "a.jpg"}},
		UserID:         "user-1",
		GenerateImages: true,
		ImageSize:      "youtube",
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	require.Len(t, resp.GeneratedImages, 1)
	assert.Equal(t, "Red Shoe", resp.GeneratedImages[0].ProductName)
	assert.Contains(t, resp.Raw, "current_step")
}

func TestClient_Process_StatusMapping(t *testing.T) {
	cases := []struct {
		status  int
		message string
	}{
		{http.StatusRequestEntityTooLarge, "Images are too large. Please use smaller images (under 4MB each)."},
		{http.StatusTooManyRequests, "Too many requests. Please wait a moment and try again."},
		{http.StatusInternalServerError, "Server error occurred. This might be due to high traffic. Please try again in a few moments."},
		{http.StatusBadGateway, "Service temporarily unavailable. Please try again in a few moments."},
		{http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again in a few moments."},
		{http.StatusGatewayTimeout, "Request timed out. Please try with fewer images or try again later."},
		{http.StatusTeapot, "Processing error (418). Please try again."},
	}

	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		_, err := newClient(server.URL).Process(context.Background(), aibackend.ProcessRequest{})
		server.Close()

		var upstream *aibackend.UpstreamError
		require.True(t, errors.As(err, &upstream), "status %d", tc.status)
		assert.Equal(t, tc.status, upstream.StatusCode)
		assert.Equal(t, tc.message, upstream.Message)
	}
}

func TestClient_Process_NotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newClient(server.URL).Process(context.Background(), aibackend.ProcessRequest{})
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Process_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	}))
	defer server.Close()

	_, err := newClient(server.URL).Process(context.Background(), aibackend.ProcessRequest{})

	var upstream *aibackend.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
	assert.Equal(t, "Invalid response from processing service. Please try again.", upstream.Message)
}

func TestClient_Process_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := aibackend.NewClient(server.URL, "", 50*time.Millisecond, time.Second)
	_, err := client.Process(context.Background(), aibackend.ProcessRequest{})

	var upstream *aibackend.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusRequestTimeout, upstream.StatusCode)
}

func TestClient_Process_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newClient(url).Process(context.Background(), aibackend.ProcessRequest{})

	var upstream *aibackend.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
	assert.Equal(t, "Unable to connect to the AI processing service. Please try again in a few moments.", upstream.Message)
}

func TestClient_Validate_RetriesTransientFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"success": true, "can_proceed": true, "valid_products": [{"is_product": true, "confidence": 0.9}]}`))
	}))
	defer server.Close()

	resp, err := newClient(server.URL).Validate(context.Background(), aibackend.ValidateRequest{UserID: "u"})
	require.NoError(t, err)
	assert.True(t, resp.CanProceed)
	assert.Len(t, resp.ValidProducts, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Validate_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))
	defer server.Close()

	_, err := newClient(server.URL).Validate(context.Background(), aibackend.ValidateRequest{})
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, aibackend.IsRetryable(errors.New("boom")))
	assert.True(t, aibackend.IsRetryable(&aibackend.UpstreamError{StatusCode: http.StatusServiceUnavailable}))
	assert.False(t, aibackend.IsRetryable(&aibackend.UpstreamError{StatusCode: http.StatusRequestTimeout}))
	assert.False(t, aibackend.IsRetryable(&aibackend.UpstreamError{StatusCode: http.StatusInternalServerError}))
}
