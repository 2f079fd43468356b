package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/jonwraymond/genops/cache"
	"github.com/jonwraymond/genops/config"
	"github.com/jonwraymond/genops/generator"
	"github.com/jonwraymond/genops/health"
	"github.com/jonwraymond/genops/observe"
	"github.com/jonwraymond/genops/scheduler"
	"github.com/jonwraymond/genops/store"
)

// Service serves cached, rate-limited generation requests.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Close must be called once the service is no longer needed.
type Service struct {
	cfg      config.Config
	policies cache.PolicySet
	logger   observe.Logger

	observer    observe.Observer
	ownObserver bool
	store       store.Store
	ownStore    bool

	sched      *scheduler.Scheduler
	cache      *cache.Tiered
	gen        generator.Generator
	middleware *observe.Middleware
	model      string
	health     *health.Aggregator

	mu     sync.RWMutex
	closed bool
}

// New builds a service from cfg.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{cfg: cfg}
	if err := s.init(ctx, o); err != nil {
		_ = s.release(context.WithoutCancel(ctx))
		return nil, err
	}

	s.logger.Info(ctx, "service started",
		observe.Field{Key: "store", Value: cfg.Store.Driver},
		observe.Field{Key: "model", Value: s.model},
		observe.Field{Key: "min_interval", Value: cfg.Scheduler.MinInterval.String()},
	)
	return s, nil
}

func (s *Service) init(ctx context.Context, o options) error {
	var err error

	s.observer = o.observer
	if s.observer == nil {
		s.observer, err = observe.NewObserver(ctx, s.cfg.Observe)
		if err != nil {
			return fmt.Errorf("service: observer: %w", err)
		}
		s.ownObserver = true
	}
	s.logger = s.observer.Logger().With(observe.Field{Key: "component", Value: "service"})

	s.gen = o.generator
	if s.gen == nil {
		if s.cfg.Generator.Provider != config.ProviderGemini {
			return ErrNoGenerator
		}
		s.gen, err = generator.NewGemini(ctx, s.cfg.Generator.Gemini, s.observer.Logger())
		if err != nil {
			return err
		}
	}
	if m, ok := s.gen.(interface{ Model() string }); ok {
		s.model = m.Model()
	}

	s.store = o.store
	if s.store == nil {
		s.store, err = store.Open(ctx, s.cfg.Store)
		if err != nil {
			return fmt.Errorf("service: store: %w", err)
		}
		s.ownStore = true
	}

	meter := s.observer.Meter()
	schedMetrics, err := observe.NewSchedulerMetrics(meter)
	if err != nil {
		return fmt.Errorf("service: scheduler metrics: %w", err)
	}
	cacheMetrics, err := observe.NewCacheMetrics(meter)
	if err != nil {
		return fmt.Errorf("service: cache metrics: %w", err)
	}
	s.middleware, err = observe.MiddlewareFromObserver(s.observer)
	if err != nil {
		return fmt.Errorf("service: middleware: %w", err)
	}

	s.sched = scheduler.New(s.cfg.Scheduler,
		scheduler.WithLogger(s.observer.Logger()),
		scheduler.WithMetrics(schedMetrics),
		scheduler.WithTracer(s.observer.Tracer()),
		scheduler.WithClock(o.now, o.sleep),
	)

	s.cache = cache.NewTiered(cache.TieredConfig{
		Memory:           cache.NewMemory(cache.MemoryConfig{MaxEntries: s.cfg.Cache.MaxEntries}),
		Store:            s.store,
		Keyer:            &cache.DefaultKeyer{Seed: s.cfg.Cache.Seed},
		Logger:           s.observer.Logger(),
		Metrics:          cacheMetrics,
		WriteConcurrency: s.cfg.Cache.WriteConcurrency,
		WriteTimeout:     s.cfg.Cache.WriteTimeout,
	})

	s.policies = s.buildPolicies(o.policies)
	s.health = s.buildHealth(o)
	return nil
}

func (s *Service) buildPolicies(overrides map[string]cache.Policy) cache.PolicySet {
	set := cache.PolicySet{
		Default:    s.cfg.Cache.Policies.Default,
		Operations: make(map[string]cache.Policy),
	}
	ttl := s.cfg.Cache.JobSearchTTL
	if ttl <= 0 {
		ttl = config.JobSearchTTL
	}
	set.Operations[JobSearchOperation] = cache.Policy{
		TTL:        ttl,
		Persist:    true,
		Collection: JobSearchCollection,
	}
	maps.Copy(set.Operations, s.cfg.Cache.Policies.Operations)
	maps.Copy(set.Operations, overrides)
	return set
}

func (s *Service) buildHealth(o options) *health.Aggregator {
	agg := health.NewAggregator(health.AggregatorConfig{Timeout: o.healthTimeout})

	if p, ok := s.store.(store.Pinger); ok {
		checker := health.NewStoreChecker(p)
		if g, ok := s.store.(*store.Guarded); ok {
			checker.WithBreaker(func() string { return g.State().String() })
		}
		agg.Register(checker)
	}
	agg.Register(health.NewQueueChecker("scheduler", s.sched.Len, o.queueWarning, o.queueCritical))
	agg.Register(health.NewThresholdChecker("memory_tier", "entries", s.cache.Memory().Len, 0, 0))
	return agg
}

// Policy returns the cache policy applied to operation.
func (s *Service) Policy(operation string) cache.Policy {
	return s.policies.For(operation)
}

// Generate returns the result for (operation, input), generating it from
// prompt on a cache miss.
func (s *Service) Generate(ctx context.Context, operation string, input any, prompt string) (cache.Result, error) {
	return s.GenerateRequest(ctx, input, generator.Request{Operation: operation, Prompt: prompt})
}

// GenerateRequest is Generate with a full generator request. The cache key
// is derived from req.Operation and input only.
func (s *Service) GenerateRequest(ctx context.Context, input any, req generator.Request) (cache.Result, error) {
	if err := s.checkOpen(); err != nil {
		return cache.Result{}, err
	}
	if err := req.Validate(); err != nil {
		return cache.Result{}, err
	}

	key, err := s.cache.Key(req.Operation, input)
	if err != nil {
		return cache.Result{}, err
	}
	meta := observe.OperationMeta{Operation: req.Operation, Key: key, Model: s.model}
	call := s.middleware.Wrap(meta, func(ctx context.Context) (json.RawMessage, error) {
		return s.gen.Generate(ctx, req)
	})

	fetch := func(ctx context.Context) (json.RawMessage, error) {
		return scheduler.Do[json.RawMessage](ctx, s.sched, call)
	}
	return s.cache.GetOrFetchWith(ctx, req.Operation, input, s.policies.For(req.Operation), fetch)
}

// Health runs every health check.
func (s *Service) Health(ctx context.Context) health.Report {
	return s.health.Report(ctx)
}

// HealthAggregator returns the aggregator for HTTP handlers.
func (s *Service) HealthAggregator() *health.Aggregator {
	return s.health
}

// Pending returns the number of calls waiting for the generation service.
func (s *Service) Pending() int {
	return s.sched.Len()
}

// Flush waits for background persistent writes.
func (s *Service) Flush(ctx context.Context) error {
	return s.cache.Flush(ctx)
}

func (s *Service) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close stops accepting requests, waits for queued calls and background
// writes, and releases the store and observer it opened.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Info(ctx, "service stopping")
	return s.release(ctx)
}

func (s *Service) release(ctx context.Context) error {
	var errs []error
	if s.sched != nil {
		if err := s.sched.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("scheduler: %w", err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("cache flush: %w", err))
		}
	}
	if s.ownStore && s.store != nil {
		if err := store.Close(ctx, s.store); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.ownObserver && s.observer != nil {
		if err := s.observer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("observer: %w", err))
		}
	}
	return errors.Join(errs...)
}
