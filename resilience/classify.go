package resilience

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Class is the retry class of an error.
type Class int

const (
	// ClassPermanent errors are surfaced immediately.
	ClassPermanent Class = iota
	// ClassRateLimited errors signal quota or request-rate exhaustion.
	ClassRateLimited
	// ClassOverloaded errors signal a temporarily unavailable service.
	ClassOverloaded
)

func (c Class) String() string {
	switch c {
	case ClassRateLimited:
		return "rate_limited"
	case ClassOverloaded:
		return "overloaded"
	default:
		return "permanent"
	}
}

// Retryable reports whether errors of this class are transient.
func (c Class) Retryable() bool {
	return c == ClassRateLimited || c == ClassOverloaded
}

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// Message markers checked, case-insensitively, when an error carries no
// status code.
var (
	RateLimitMarkers = []string{"429", "quota", "resource exhausted", "resource_exhausted", "rate limit", "too many requests"}
	OverloadMarkers  = []string{"503", "500", "overloaded", "unavailable"}
)

// Classify returns the retry class of err. Context errors and nil are
// permanent. A status code found through StatusCoder takes precedence over
// the message markers.
func Classify(err error) Class {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassPermanent
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		if class, ok := classifyStatus(sc.StatusCode()); ok {
			return class
		}
	}

	msg := strings.ToLower(err.Error())
	if containsAny(msg, RateLimitMarkers) {
		return ClassRateLimited
	}
	if containsAny(msg, OverloadMarkers) {
		return ClassOverloaded
	}
	return ClassPermanent
}

// IsRetryable reports whether err is a transient-capacity error.
func IsRetryable(err error) bool {
	return Classify(err).Retryable()
}

func classifyStatus(code int) (Class, bool) {
	switch code {
	case 0:
		return ClassPermanent, false
	case http.StatusTooManyRequests:
		return ClassRateLimited, true
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return ClassOverloaded, true
	default:
		return ClassPermanent, true
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
