package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/jonwraymond/genops/observe"
	"github.com/jonwraymond/genops/store"
)

const (
	tierMemory = "memory"
	tierStore  = "store"
)

// FetchFunc produces a fresh result on a cache miss.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// TieredConfig configures a Tiered cache. Nil fields get defaults.
type TieredConfig struct {
	// Memory is the in-process tier. Defaults to an unbounded Memory.
	Memory *Memory

	// Store is the persistent tier. Nil disables it.
	Store store.Store

	// Keyer derives keys. Defaults to NewDefaultKeyer().
	Keyer Keyer

	Logger  observe.Logger
	Metrics observe.CacheMetrics

	// WriteConcurrency bounds in-flight background writes. Defaults to 4.
	WriteConcurrency int64

	// WriteTimeout bounds a single background write. Defaults to 10s.
	WriteTimeout time.Duration
}

// Tiered is a two-tier result cache with single-flight fetches.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - For one key at most one fetch is outstanding; every caller attached to
//     it observes the same result or the same error.
//   - Persistent tier failures are logged and treated as misses.
//   - Failed fetches are never cached.
type Tiered struct {
	memory  *Memory
	store   store.Store
	keyer   Keyer
	flights flightGroup
	writer  *writer
	logger  observe.Logger
	metrics observe.CacheMetrics
	now     func() time.Time
}

// NewTiered creates a tiered cache.
func NewTiered(cfg TieredConfig) *Tiered {
	if cfg.Memory == nil {
		cfg.Memory = NewMemory(MemoryConfig{})
	}
	if cfg.Keyer == nil {
		cfg.Keyer = NewDefaultKeyer()
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NewNopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.NopCacheMetrics()
	}
	if cfg.WriteConcurrency <= 0 {
		cfg.WriteConcurrency = 4
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	logger := cfg.Logger.With(observe.Field{Key: "component", Value: "cache"})
	return &Tiered{
		memory:  cfg.Memory,
		store:   cfg.Store,
		keyer:   cfg.Keyer,
		writer:  newWriter(cfg.Store, cfg.WriteConcurrency, cfg.WriteTimeout, logger, cfg.Metrics),
		logger:  logger,
		metrics: cfg.Metrics,
		now:     time.Now,
	}
}

// Key returns the cache key for operation and input.
func (t *Tiered) Key(operation string, input any) (string, error) {
	return t.keyer.Key(operation, input)
}

// GetOrFetch returns the cached result for (operation, input) if one is
// fresh under ttl, or fetches, caches in both tiers and returns a live one.
func (t *Tiered) GetOrFetch(ctx context.Context, operation string, input any, ttl time.Duration, fetch FetchFunc) (Result, error) {
	policy := DefaultPolicy()
	policy.TTL = ttl
	return t.GetOrFetchWith(ctx, operation, input, policy, fetch)
}

// GetOrFetchWith is GetOrFetch with a full policy.
func (t *Tiered) GetOrFetchWith(ctx context.Context, operation string, input any, policy Policy, fetch FetchFunc) (Result, error) {
	if fetch == nil {
		return Result{}, ErrNilFetch
	}

	key, err := t.keyer.Key(operation, input)
	if err != nil {
		return Result{}, err
	}

	if policy.Bypass {
		value, err := fetch(ctx)
		if err != nil {
			return Result{}, err
		}
		if !json.Valid(value) {
			return Result{}, ErrInvalidValue
		}
		return Result{
			Entry:  Entry{Key: key, Operation: operation, Value: value, CreatedAt: t.now()},
			Source: SourceLive,
		}, nil
	}

	if e, ok := t.memory.Get(key); ok && e.Fresh(t.now(), policy.TTL) {
		t.metrics.RecordLookup(ctx, operation, tierMemory, true)
		return Result{Entry: e, Source: SourceCache}, nil
	}
	t.metrics.RecordLookup(ctx, operation, tierMemory, false)

	res, shared, err := t.flights.do(ctx, key, func(ctx context.Context) (Result, error) {
		return t.load(ctx, operation, key, policy, fetch)
	})
	if err != nil {
		t.metrics.RecordFetch(ctx, operation, shared, err)
		return Result{}, err
	}
	if res.Source == SourceLive {
		t.metrics.RecordFetch(ctx, operation, shared, nil)
	}
	return res, nil
}

// load runs once per flight.
func (t *Tiered) load(ctx context.Context, operation, key string, policy Policy, fetch FetchFunc) (Result, error) {
	// A flight that settled just before this one started may have filled memory.
	if e, ok := t.memory.Get(key); ok && e.Fresh(t.now(), policy.TTL) {
		return Result{Entry: e, Source: SourceCache}, nil
	}

	persist := policy.Persist && t.store != nil
	if persist {
		if e, ok := t.lookupStore(ctx, operation, key, policy); ok {
			t.memory.Set(e)
			return Result{Entry: e, Source: SourceCache}, nil
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		return Result{}, err
	}
	if !json.Valid(value) {
		return Result{}, ErrInvalidValue
	}

	e := Entry{
		Key:       key,
		Operation: operation,
		Value:     bytes.Clone(value),
		CreatedAt: t.now(),
	}
	t.memory.Set(e)

	if persist {
		t.writer.submit(ctx, policy.CollectionName(), key, store.Document{
			Result:    e.Value,
			CreatedAt: e.CreatedAt.UnixMilli(),
			Operation: operation,
		})
	}

	return Result{Entry: e, Source: SourceLive}, nil
}

func (t *Tiered) lookupStore(ctx context.Context, operation, key string, policy Policy) (Entry, bool) {
	fields := []observe.Field{
		{Key: "operation", Value: operation},
		{Key: "cache_key", Value: key},
	}

	doc, ok, err := t.store.Get(ctx, policy.CollectionName(), key)
	if err != nil {
		t.metrics.RecordStoreError(ctx, "get")
		t.metrics.RecordLookup(ctx, operation, tierStore, false)
		t.logger.Warn(ctx, "persistent cache lookup failed", append(fields, observe.Field{Key: "error", Value: err})...)
		return Entry{}, false
	}
	if !ok {
		t.metrics.RecordLookup(ctx, operation, tierStore, false)
		return Entry{}, false
	}
	if err := doc.Validate(); err != nil {
		t.metrics.RecordLookup(ctx, operation, tierStore, false)
		t.logger.Warn(ctx, "malformed persistent cache document", append(fields, observe.Field{Key: "error", Value: err})...)
		return Entry{}, false
	}

	e := Entry{
		Key:       key,
		Operation: operation,
		Value:     doc.Result,
		CreatedAt: doc.Created(),
	}
	if !e.Fresh(t.now(), policy.TTL) {
		t.metrics.RecordLookup(ctx, operation, tierStore, false)
		t.logger.Debug(ctx, "persistent cache entry expired", fields...)
		return Entry{}, false
	}

	t.metrics.RecordLookup(ctx, operation, tierStore, true)
	return e, true
}

// Memory returns the in-process tier.
func (t *Tiered) Memory() *Memory {
	return t.memory
}

// Flush waits for pending background writes or for ctx to end.
func (t *Tiered) Flush(ctx context.Context) error {
	return t.writer.flush(ctx)
}
