package generator

import (
	"errors"
	"fmt"
)

// Sentinel errors for generation.
var (
	ErrMissingOperation = errors.New("generator: operation is required")
	ErrEmptyPrompt      = errors.New("generator: prompt is empty")
	ErrEmptyResponse    = errors.New("generator: empty response")
	ErrInvalidResponse  = errors.New("generator: response is not valid JSON")
	ErrBlocked          = errors.New("generator: response blocked")
	ErrMissingAPIKey    = errors.New("generator: api key is required")
)

// StatusError is a failed call to the generation service.
type StatusError struct {
	Code    int
	Status  string
	Message string
	Err     error
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("generator: %s (%d): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("generator: status %d: %s", e.Code, e.Message)
}

// StatusCode returns the HTTP status of the failed call.
func (e *StatusError) StatusCode() int { return e.Code }

func (e *StatusError) Unwrap() error { return e.Err }
