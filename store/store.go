package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for store operations.
var (
	ErrInvalidCollection = errors.New("store: collection is invalid")
	ErrInvalidKey        = errors.New("store: key is invalid")
	ErrInvalidDocument   = errors.New("store: document is invalid")
	ErrUnknownDriver     = errors.New("store: unknown driver")
	ErrClosed            = errors.New("store: store is closed")
)

// Document is the envelope persisted for every cached result.
type Document struct {
	// Result is the cached payload as JSON.
	Result json.RawMessage `json:"result"`

	// CreatedAt is the creation time in unix milliseconds.
	CreatedAt int64 `json:"createdAt"`

	// Operation is the logical operation that produced the result.
	Operation string `json:"operation"`
}

// Created returns CreatedAt as a time.
func (d Document) Created() time.Time {
	return time.UnixMilli(d.CreatedAt)
}

// Validate reports whether the document can be served from the cache.
func (d Document) Validate() error {
	if len(d.Result) == 0 {
		return fmt.Errorf("%w: empty result", ErrInvalidDocument)
	}
	if !json.Valid(d.Result) {
		return fmt.Errorf("%w: result is not valid JSON", ErrInvalidDocument)
	}
	if d.CreatedAt <= 0 {
		return fmt.Errorf("%w: missing createdAt", ErrInvalidDocument)
	}
	return nil
}

// Store is a persistent document store addressed by (collection, key).
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods must honor cancellation/deadlines.
// - Get returns (Document{}, false, nil) when the document does not exist.
// - Set replaces any existing document.
type Store interface {
	Get(ctx context.Context, collection, key string) (Document, bool, error)
	Set(ctx context.Context, collection, key string, doc Document) error
}

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Closer is implemented by stores that hold connections.
type Closer interface {
	Close(ctx context.Context) error
}

func validateAddress(collection, key string) error {
	if strings.TrimSpace(collection) == "" || strings.ContainsAny(collection, "\n\r") {
		return ErrInvalidCollection
	}
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
