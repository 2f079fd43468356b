package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores documents as JSON strings under "<prefix><collection>:<key>".
type Redis struct {
	client     *redis.Client
	prefix     string
	expiration time.Duration
	owned      bool
}

// NewRedis wraps an existing client. Expiration sets a physical expiry on
// written keys; zero keeps them forever.
func NewRedis(client *redis.Client, prefix string, expiration time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, expiration: expiration}
}

// OpenRedis connects to addr, which is either host:port or a redis:// URL,
// and verifies the connection.
func OpenRedis(ctx context.Context, addr, prefix string, expiration time.Duration) (*Redis, error) {
	var opts *redis.Options
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("store: parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: redis ping: %w", err)
	}

	r := NewRedis(client, prefix, expiration)
	r.owned = true
	return r, nil
}

func (r *Redis) key(collection, key string) string {
	return r.prefix + collection + ":" + key
}

func (r *Redis) Get(ctx context.Context, collection, key string) (Document, bool, error) {
	if err := validateAddress(collection, key); err != nil {
		return Document{}, false, err
	}

	data, err := r.client.Get(ctx, r.key(collection, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("store: redis get: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, false, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc, true, nil
}

func (r *Redis) Set(ctx context.Context, collection, key string, doc Document) error {
	if err := validateAddress(collection, key); err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := r.client.Set(ctx, r.key(collection, key), data, r.expiration).Err(); err != nil {
		return fmt.Errorf("store: redis set: %w", err)
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client if OpenRedis created it.
func (r *Redis) Close(context.Context) error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}

var (
	_ Store  = (*Redis)(nil)
	_ Pinger = (*Redis)(nil)
	_ Closer = (*Redis)(nil)
)
