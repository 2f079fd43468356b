package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jonwraymond/genops/observe"
	"github.com/jonwraymond/genops/store"
)

// writer persists entries in the background.
type writer struct {
	store   store.Store
	sem     *semaphore.Weighted
	timeout time.Duration
	logger  observe.Logger
	metrics observe.CacheMetrics

	mu      sync.Mutex
	pending int
	idle    chan struct{} // closed while pending is zero
}

func newWriter(s store.Store, concurrency int64, timeout time.Duration, logger observe.Logger, metrics observe.CacheMetrics) *writer {
	idle := make(chan struct{})
	close(idle)
	return &writer{
		store:   s,
		sem:     semaphore.NewWeighted(concurrency),
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
		idle:    idle,
	}
}

func (w *writer) begin() {
	w.mu.Lock()
	if w.pending == 0 {
		w.idle = make(chan struct{})
	}
	w.pending++
	w.mu.Unlock()
}

func (w *writer) end() {
	w.mu.Lock()
	w.pending--
	if w.pending == 0 {
		close(w.idle)
	}
	w.mu.Unlock()
}

// inFlight returns the number of unfinished writes.
func (w *writer) inFlight() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// submit schedules a write and returns immediately. Failures are logged.
func (w *writer) submit(ctx context.Context, collection, key string, doc store.Document) {
	w.begin()
	go func() {
		defer w.end()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				w.metrics.RecordStoreError(ctx, "set")
				w.logger.Error(ctx, "persistent cache write panicked",
					observe.Field{Key: "cache_key", Value: key},
					observe.Field{Key: "panic", Value: r},
				)
			}
		}()

		if err := w.sem.Acquire(ctx, 1); err != nil {
			w.fail(ctx, key, err)
			return
		}
		defer w.sem.Release(1)

		if err := w.store.Set(ctx, collection, key, doc); err != nil {
			w.fail(ctx, key, err)
		}
	}()
}

func (w *writer) fail(ctx context.Context, key string, err error) {
	w.metrics.RecordStoreError(ctx, "set")
	w.logger.Warn(ctx, "persistent cache write failed",
		observe.Field{Key: "cache_key", Value: key},
		observe.Field{Key: "error", Value: err},
	)
}

// flush waits until no write is pending or ctx ends. It may be called
// while new writes are still being submitted.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	idle := w.idle
	w.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
