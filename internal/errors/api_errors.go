package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// APIError represents an error returned by the remote host API
type APIError struct {
	Op      string // Operation that failed
	Message string // Error message
	Status  int    // HTTP status code (if applicable)
	Err     error  // Underlying error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError
func NewAPIError(op, message string, err error) *APIError {
	return &APIError{
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewAPIHTTPError creates a new APIError with HTTP status
func NewAPIHTTPError(op string, status int, message string, err error) *APIError {
	return &APIError{
		Op:      op,
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// Common API error types
var (
	ErrRepositoryNotFound = &APIError{
		Message: "repository not found",
		Status:  http.StatusNotFound,
	}

	ErrUnprocessable = &APIError{
		Message: "validation failed",
		Status:  http.StatusUnprocessableEntity,
	}

	ErrRateLimitExceeded = &APIError{
		Message: "GitHub API rate limit exceeded",
		Status:  http.StatusTooManyRequests,
	}
)

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAPIError checks if an error is an APIError
func IsAPIError(err error) bool {
	_, ok := asAPIError(err)
	return ok
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	if ae, ok := asAPIError(err); ok {
		return ae.Status
	}
	return 0
}

// IsNotFound checks if the error indicates a resource was not found
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// IsUnprocessable checks if the host rejected the request as invalid (HTTP 422)
func IsUnprocessable(err error) bool {
	return StatusOf(err) == http.StatusUnprocessableEntity
}

// IsRateLimitExceeded checks if the error indicates rate limit was exceeded
func IsRateLimitExceeded(err error) bool {
	return StatusOf(err) == http.StatusTooManyRequests
}

// IsRetryable checks if the error is potentially retryable
func IsRetryable(err error) bool {
	switch StatusOf(err) {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
