package service

import (
	"time"

	"github.com/jonwraymond/genops/cache"
	"github.com/jonwraymond/genops/generator"
	"github.com/jonwraymond/genops/observe"
	"github.com/jonwraymond/genops/resilience"
	"github.com/jonwraymond/genops/store"
)

// Option configures a Service.
type Option func(*options)

type options struct {
	generator     generator.Generator
	store         store.Store
	observer      observe.Observer
	now           func() time.Time
	sleep         resilience.SleepFunc
	policies      map[string]cache.Policy
	queueWarning  int
	queueCritical int
	healthTimeout time.Duration
}

func defaultOptions() options {
	return options{
		policies:      make(map[string]cache.Policy),
		queueWarning:  10,
		queueCritical: 100,
	}
}

// WithGenerator uses g instead of the configured provider.
func WithGenerator(g generator.Generator) Option {
	return func(o *options) { o.generator = g }
}

// WithStore uses s as the persistent tier instead of opening one from
// configuration. The caller keeps ownership and closes it.
func WithStore(s store.Store) Option {
	return func(o *options) { o.store = s }
}

// WithObserver uses obs instead of building one from configuration. The
// caller keeps ownership and shuts it down.
func WithObserver(obs observe.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithClock replaces the clock and sleep used by the scheduler.
func WithClock(now func() time.Time, sleep resilience.SleepFunc) Option {
	return func(o *options) {
		o.now = now
		o.sleep = sleep
	}
}

// WithPolicy sets the cache policy for operation.
func WithPolicy(operation string, p cache.Policy) Option {
	return func(o *options) { o.policies[operation] = p }
}

// WithInteractive keeps the results of operations in memory only, valid
// for ttl.
func WithInteractive(ttl time.Duration, operations ...string) Option {
	return func(o *options) {
		for _, op := range operations {
			o.policies[op] = cache.MemoryOnlyPolicy(ttl)
		}
	}
}

// WithQueueThresholds sets the scheduler backlog at which health reports
// degraded and unhealthy.
func WithQueueThresholds(warning, critical int) Option {
	return func(o *options) {
		o.queueWarning = warning
		o.queueCritical = critical
	}
}

// WithHealthTimeout bounds a round of health checks.
func WithHealthTimeout(d time.Duration) Option {
	return func(o *options) { o.healthTimeout = d }
}
