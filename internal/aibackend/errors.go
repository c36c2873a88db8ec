package aibackend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// UpstreamError is a backend failure already translated into the status code
// and message shown to the user.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ai backend: %s (%v)", e.Message, e.Err)
	}
	return "ai backend: " + e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

const (
	msgTimeout        = "Request timed out. The backend is taking longer than expected. Please try with fewer images or try again later."
	msgUnreachable    = "Unable to connect to the AI processing service. Please try again in a few moments."
	msgNetwork        = "Network error occurred. Please check your connection and try again."
	msgTooLarge       = "Images are too large. Please use smaller images (under 4MB each)."
	msgTooMany        = "Too many requests. Please wait a moment and try again."
	msgServerError    = "Server error occurred. This might be due to high traffic. Please try again in a few moments."
	msgUnavailable    = "Service temporarily unavailable. Please try again in a few moments."
	msgGatewayTimeout = "Request timed out. Please try with fewer images or try again later."
	msgBadResponse    = "Invalid response from processing service. Please try again."
)

func classifyTransportError(err error) *UpstreamError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return &UpstreamError{StatusCode: http.StatusRequestTimeout, Message: msgTimeout, Err: err}
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		isDNSError(err),
		strings.Contains(strings.ToLower(err.Error()), "connection refused"):
		return &UpstreamError{StatusCode: http.StatusServiceUnavailable, Message: msgUnreachable, Err: err}
	default:
		return &UpstreamError{StatusCode: http.StatusServiceUnavailable, Message: msgNetwork, Err: err}
	}
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func classifyStatus(status int, body []byte) *UpstreamError {
	var cause error
	if len(body) > 0 {
		cause = fmt.Errorf("status %d, body: %s", status, truncate(string(body), 512))
	} else {
		cause = fmt.Errorf("status %d", status)
	}

	var msg string
	switch status {
	case http.StatusRequestEntityTooLarge:
		msg = msgTooLarge
	case http.StatusTooManyRequests:
		msg = msgTooMany
	case http.StatusInternalServerError:
		msg = msgServerError
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		msg = msgUnavailable
	case http.StatusGatewayTimeout:
		msg = msgGatewayTimeout
	default:
		msg = fmt.Sprintf("Processing error (%d). Please try again.", status)
	}
	return &UpstreamError{StatusCode: status, Message: msg, Err: cause}
}

func invalidResponse(err error) *UpstreamError {
	return &UpstreamError{StatusCode: http.StatusBadGateway, Message: msgBadResponse, Err: err}
}

// IsRetryable reports whether repeating the call could succeed: transport
// failures other than timeouts, and 429/502/503 answers.
func IsRetryable(err error) bool {
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		return true
	}
	switch upstream.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway:
		return upstream.Message != msgBadResponse
	case http.StatusServiceUnavailable:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
