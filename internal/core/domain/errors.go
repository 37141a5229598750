package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrStoreNotFound indicates the store does not exist
	ErrStoreNotFound = errors.New("store not found")

	// ErrEndpointNotFound indicates the store has no endpoint at the requested index
	ErrEndpointNotFound = errors.New("endpoint not found")

	// ErrMissingRequiredField indicates a raw record is missing name, brand or price
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// ErrorKind classifies an upstream failure. The classifier maps raw error
// messages onto this fixed set; the retry policy keys off it.
type ErrorKind string

const (
	ErrorKindNetwork        ErrorKind = "network_error"
	ErrorKindTimeout        ErrorKind = "timeout_error"
	ErrorKindSelector       ErrorKind = "selector_error"
	ErrorKindNavigation     ErrorKind = "navigation_error"
	ErrorKindMemory         ErrorKind = "memory_error"
	ErrorKindRateLimit      ErrorKind = "rate_limit_error"
	ErrorKindCaptcha        ErrorKind = "captcha_error"
	ErrorKindAuthentication ErrorKind = "authentication_error"
	ErrorKindDefault        ErrorKind = "default"
)

// UpstreamError carries the HTTP status or transport detail of a failed
// endpoint call. The message is what the classifier pattern-matches on.
type UpstreamError struct {
	URL    string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream request to %s failed with status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("upstream request to %s failed: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NormalizationError describes why a single raw record could not be
// normalized. Batch normalization collects these instead of failing the run.
type NormalizationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *NormalizationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("normalize %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("normalize record: %s", e.Reason)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}
