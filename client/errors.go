package client

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a package or version is not found.
var ErrNotFound = errors.New("not found")

// ErrUnavailable is returned when a registry cannot be reached or keeps failing.
var ErrUnavailable = errors.New("registry unavailable")

// HTTPError represents a non-2xx HTTP response.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsNotFound returns true if the error represents a 404/410 response.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == 404 || e.StatusCode == 410
}

func (e *HTTPError) Unwrap() error {
	if e.IsNotFound() {
		return ErrNotFound
	}
	if e.StatusCode >= 500 {
		return ErrUnavailable
	}
	return nil
}

// NotFoundError wraps ErrNotFound with the package it concerns.
type NotFoundError struct {
	Ecosystem string
	Name      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: package %s not found", e.Ecosystem, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// RateLimitError is returned when the registry rate limits requests.
type RateLimitError struct {
	RetryAfter int // seconds
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %d seconds", e.RetryAfter)
}

// AuthError is returned on 401/403 responses. The message never carries
// credential material, only the status and URL.
type AuthError struct {
	StatusCode int
	URL        string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (HTTP %d): %s", e.StatusCode, e.URL)
}
