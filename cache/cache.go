package cache

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// NoExpiry marks a TTL under which entries never go stale.
const NoExpiry time.Duration = 0

// Sentinel errors for cache operations.
var (
	ErrInvalidKey       = errors.New("cache: key is invalid")
	ErrKeyTooLong       = errors.New("cache: key exceeds max length")
	ErrMissingOperation = errors.New("cache: operation is required")
	ErrNilFetch         = errors.New("cache: fetch function is nil")
	ErrInvalidValue     = errors.New("cache: fetched value is not valid JSON")
	ErrFetchPanic       = errors.New("cache: fetch panicked")
)

// Source tells a caller where a result came from.
type Source string

const (
	SourceCache Source = "cache"
	SourceLive  Source = "live"
)

// Entry is one memoized result. Entries are never mutated; a refresh
// replaces the entry in both tiers.
type Entry struct {
	Key       string
	Operation string
	Value     json.RawMessage
	CreatedAt time.Time
}

// Fresh reports whether the entry is still valid at now under ttl.
// A ttl of NoExpiry (or below) keeps the entry valid forever.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	if ttl <= NoExpiry {
		return true
	}
	return now.Sub(e.CreatedAt) < ttl
}

// Result is an entry returned to a caller, tagged with its source.
type Result struct {
	Entry
	Source Source
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
