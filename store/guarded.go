package store

import (
	"context"
	"time"

	"github.com/jonwraymond/genops/resilience"
)

// GuardConfig configures Guarded.
type GuardConfig struct {
	// Timeout bounds each store call. Zero disables the timeout.
	Timeout time.Duration `mapstructure:"timeout"`

	// Breaker configures the circuit breaker around the store.
	Breaker resilience.CircuitBreakerConfig `mapstructure:"breaker"`
}

// Guarded runs every call of another Store through a timeout and a circuit
// breaker. Once the breaker opens, calls fail with resilience.ErrCircuitOpen
// without touching the backend.
type Guarded struct {
	inner Store
	exec  *resilience.Executor
}

// NewGuarded wraps inner.
func NewGuarded(inner Store, cfg GuardConfig) *Guarded {
	opts := []resilience.ExecutorOption{
		resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(cfg.Breaker)),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, resilience.WithTimeout(cfg.Timeout))
	}
	return &Guarded{inner: inner, exec: resilience.NewExecutor(opts...)}
}

func (g *Guarded) Get(ctx context.Context, collection, key string) (Document, bool, error) {
	var (
		doc   Document
		found bool
	)
	err := g.exec.Execute(ctx, func(ctx context.Context) error {
		d, ok, err := g.inner.Get(ctx, collection, key)
		doc, found = d, ok
		return err
	})
	if err != nil {
		return Document{}, false, err
	}
	return doc, found, nil
}

func (g *Guarded) Set(ctx context.Context, collection, key string, doc Document) error {
	return g.exec.Execute(ctx, func(ctx context.Context) error {
		return g.inner.Set(ctx, collection, key, doc)
	})
}

// Ping pings the wrapped store directly so health checks can observe
// recovery while the breaker is open.
func (g *Guarded) Ping(ctx context.Context) error {
	if p, ok := g.inner.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (g *Guarded) Close(ctx context.Context) error {
	return Close(ctx, g.inner)
}

// State returns the breaker state.
func (g *Guarded) State() resilience.State {
	return g.exec.CircuitBreaker().State()
}

// Unwrap returns the wrapped store.
func (g *Guarded) Unwrap() Store {
	return g.inner
}

var (
	_ Store  = (*Guarded)(nil)
	_ Pinger = (*Guarded)(nil)
	_ Closer = (*Guarded)(nil)
)
