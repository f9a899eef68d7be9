package services

import (
	"errors"
	"fmt"
)

// ErrRetriesExhausted is the defensive terminal case: the retry loop
// completed without either returning a response or a more specific failure.
var ErrRetriesExhausted = errors.New("failed to get response after multiple retries")

// ConfigurationError means no API credential is configured. It is surfaced
// immediately and never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "API key not configured: set OPENROUTER_API_KEY in the environment or .env file"
}

// ResponseFormatError means the backend accepted the request but returned
// an envelope missing the expected fields. The output contract was
// violated, so the request is not retried.
type ResponseFormatError struct {
	Message string
}

func (e *ResponseFormatError) Error() string {
	if e.Message != "" {
		return "invalid response format from API: " + e.Message
	}
	return "invalid response format from API"
}

// RateLimitError means the backend kept rate-limiting across the whole
// retry budget.
type RateLimitError struct {
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded after %d attempts, please try again later", e.Attempts)
}

// TimeoutError means every attempt timed out.
type TimeoutError struct {
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %d attempts, please check your connection", e.Attempts)
}

// NetworkError means a lower-level transport failure persisted across the
// retry budget. Cause carries the underlying error.
type NetworkError struct {
	Attempts int
	Cause    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// RequestError is a non-2xx, non-429 rejection. It is treated as
// non-transient and never retried. Message carries the provider-supplied
// error text when one was present.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API request failed with status %d", e.StatusCode)
}
