// Package errors converts failed upstream HTTP responses into typed errors.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxErrorBody = 4 << 10

// HTTPError describes a non-2xx upstream response.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether retrying the request may succeed.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// ParseHTTPError returns nil for 1xx-3xx responses and an *HTTPError
// otherwise, preferring an "error" or "message" field from a JSON body.
func ParseHTTPError(resp *http.Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	herr := &HTTPError{StatusCode: resp.StatusCode}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	switch {
	case json.Unmarshal(body, &payload) == nil && payload.Error != "":
		herr.Message = payload.Error
	case payload.Message != "":
		herr.Message = payload.Message
	default:
		herr.Message = string(body)
	}
	return herr
}

// IsTemporaryHTTP reports whether err wraps a retryable *HTTPError.
func IsTemporaryHTTP(err error) bool {
	var herr *HTTPError
	return errors.As(err, &herr) && herr.Temporary()
}
