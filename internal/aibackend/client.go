package aibackend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL         string
	apiKey          string
	httpClient      *http.Client
	processTimeout  time.Duration
	validateTimeout time.Duration
	backoffs        []time.Duration
}

type Image struct {
	Base64   string `json:"base64"`
	Filename string `json:"filename"`
}

type ValidateRequest struct {
	Images []Image `json:"images"`
	UserID string  `json:"userId"`
}

type ValidationResult struct {
	Filename    string  `json:"filename,omitempty"`
	IsProduct   bool    `json:"is_product"`
	Category    string  `json:"category,omitempty"` // "product", "person", "scene", "other"
	Confidence  float64 `json:"confidence"`
	ProductName string  `json:"product_name,omitempty"`
	ProductType string  `json:"product_type,omitempty"`
	BrandName   string  `json:"brand_name,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

type ValidateResponse struct {
	Success           bool               `json:"success"`
	Error             string             `json:"error,omitempty"`
	Message           string             `json:"message,omitempty"`
	ValidationResults []ValidationResult `json:"validation_results"`
	ValidProducts     []ValidationResult `json:"valid_products"`
	RejectedImages    []ValidationResult `json:"rejected_images"`
	CanProceed        bool               `json:"can_proceed"`

	// Raw keeps every top-level field of the upstream body so callers can
	// relay fields this struct does not model.
	Raw map[string]json.RawMessage `json:"-"`
}

type ProcessRequest struct {
	Images         []Image `json:"images"`
	UserID         string  `json:"userId"`
	SessionID      string  `json:"sessionId,omitempty"`
	GenerateImages bool    `json:"generate_images"`
	ImageSize      string  `json:"image_size"`
}

type Product struct {
	ProductName string `json:"product_name"`
	ProductType string `json:"product_type"`
	BrandName   string `json:"brand_name,omitempty"`
}

type GeneratedImage struct {
	Prompt      string `json:"prompt"`
	ImageBase64 string `json:"image_base64"`
	ImageURL    string `json:"image_url,omitempty"`
	Index       int    `json:"index"`
	InputImage  string `json:"input_image,omitempty"`
	Size        string `json:"size,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	PromptType  string `json:"prompt_type,omitempty"`
}

type ProcessResponse struct {
	Success         bool             `json:"success"`
	Error           string           `json:"error,omitempty"`
	Message         string           `json:"message,omitempty"`
	Cancelled       bool             `json:"cancelled,omitempty"`
	Products        []Product        `json:"products,omitempty"`
	Prompts         []string         `json:"prompts,omitempty"`
	Descriptions    []string         `json:"descriptions,omitempty"`
	GeneratedImages []GeneratedImage `json:"generated_images,omitempty"`
	ImageFormat     string           `json:"image_format,omitempty"`

	Raw map[string]json.RawMessage `json:"-"`
}

func NewClient(baseURL, apiKey string, processTimeout, validateTimeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		// Deadlines come from the per-call context.
		httpClient:      &http.Client{},
		processTimeout:  processTimeout,
		validateTimeout: validateTimeout,
		backoffs:        []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
}

// SetBackoff replaces the delays slept between RetryWithBackoff attempts.
func (c *Client) SetBackoff(delays ...time.Duration) {
	c.backoffs = delays
}

// Validate asks the backend to classify the uploaded photos. It is safe to
// repeat, so transient failures are retried.
func (c *Client) Validate(ctx context.Context, req ValidateRequest) (*ValidateResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.validateTimeout)
	defer cancel()

	var result *ValidateResponse
	err := c.RetryWithBackoff(ctx, func() error {
		body, err := c.postJSON(ctx, "/api/validate", req)
		if err != nil {
			return err
		}
		var out ValidateResponse
		if err := decodeInto(body, &out, &out.Raw); err != nil {
			return err
		}
		result = &out
		return nil
	}, 3)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Process runs validation, prompt writing and image generation upstream.
// It is not retried: a repeated call would generate and bill twice.
func (c *Client) Process(ctx context.Context, req ProcessRequest) (*ProcessResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.processTimeout)
	defer cancel()

	body, err := c.postJSON(ctx, "/api/process", req)
	if err != nil {
		return nil, err
	}

	var out ProcessResponse
	if err := decodeInto(body, &out, &out.Raw); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks that the backend answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp.StatusCode, nil)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(resp.StatusCode, body)
	}

	return body, nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
}

func decodeInto(body []byte, dst interface{}, raw *map[string]json.RawMessage) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return invalidResponse(err)
	}
	if err := json.Unmarshal(body, raw); err != nil {
		return invalidResponse(err)
	}
	return nil
}

// RetryWithBackoff executes fn until it succeeds, returns a non-retryable
// error, the context ends, or maxRetries attempts have been made.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if !IsRetryable(err) || i == maxRetries-1 {
			break
		}

		if i < len(c.backoffs) {
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(c.backoffs[i]):
			}
		}
	}

	var upstream *UpstreamError
	if errors.As(lastErr, &upstream) {
		return lastErr
	}
	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
