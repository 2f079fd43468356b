package scheduler

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/genops/observe"
	"github.com/jonwraymond/genops/resilience"
)

// Task outcomes reported to metrics.
const (
	OutcomeResolved  = "resolved"
	OutcomeRejected  = "rejected"
	OutcomeAbandoned = "abandoned"
)

// Config configures a Scheduler.
type Config struct {
	// MinInterval is the minimum gap between the completion of one call
	// and the start of the next.
	MinInterval time.Duration `mapstructure:"min_interval" validate:"gte=0"`

	// MaxRetries is the number of retries allowed after transient failures.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0"`

	// Backoff computes the delay before each retry.
	Backoff resilience.Backoff `mapstructure:"backoff"`
}

// DefaultConfig returns 1500ms spacing, 3 retries and 2s/4s/8s backoff.
func DefaultConfig() Config {
	return Config{
		MinInterval: 1500 * time.Millisecond,
		MaxRetries:  3,
		Backoff:     resilience.DefaultBackoff(),
	}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observe.SchedulerMetrics) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the tracer used for per-execution spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Scheduler) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock replaces the clock and sleep used for spacing and backoff.
func WithClock(now func() time.Time, sleep resilience.SleepFunc) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// Scheduler is a FIFO queue that runs one task at a time.
//
// Contract:
// - Concurrency: Add is safe for concurrent use.
// - Ordering: tasks start in enqueue order; a retried task runs next.
// - At most one task executes at any time.
type Scheduler struct {
	cfg     Config
	spacer  *resilience.Spacer
	now     func() time.Time
	sleep   resilience.SleepFunc
	logger  observe.Logger
	metrics observe.SchedulerMetrics
	tracer  trace.Tracer

	mu         sync.Mutex
	queue      *list.List // of *task
	processing bool
	closed     bool
	workers    sync.WaitGroup
}

// New creates a scheduler. A zero MinInterval gets the default spacing;
// a negative MaxRetries disables retries.
func New(cfg Config, opts ...Option) *Scheduler {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultConfig().MinInterval
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	s := &Scheduler{
		cfg:     cfg,
		now:     time.Now,
		sleep:   resilience.Sleep,
		logger:  observe.NewNopLogger(),
		metrics: observe.NopSchedulerMetrics(),
		tracer:  tracenoop.NewTracerProvider().Tracer("noop"),
		queue:   list.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(observe.Field{Key: "component", Value: "scheduler"})
	s.spacer = resilience.NewSpacer(resilience.SpacerConfig{
		Interval: cfg.MinInterval,
		Now:      s.now,
		Sleep:    s.sleep,
	})
	return s
}

// Add enqueues fn and waits for its final result. If ctx ends first, Add
// returns ctx.Err(); a task that has not started by then never runs.
func (s *Scheduler) Add(ctx context.Context, fn Task) (any, error) {
	if fn == nil {
		return nil, ErrNilTask
	}

	t := &task{
		id:       uuid.NewString(),
		fn:       fn,
		ctx:      ctx,
		enqueued: s.now(),
		done:     make(chan result, 1),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.queue.PushBack(t)
	start := !s.processing
	if start {
		s.processing = true
		s.workers.Add(1)
	}
	s.mu.Unlock()

	s.metrics.AddQueueDepth(ctx, 1)
	s.logger.Debug(ctx, "task enqueued", observe.Field{Key: "task_id", Value: t.id})

	if start {
		go s.process()
	}

	select {
	case r := <-t.done:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Do runs fn through s and returns its typed result.
func Do[T any](ctx context.Context, s *Scheduler, fn func(context.Context) (T, error)) (T, error) {
	v, err := s.Add(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return typed[T](v)
}

// typed converts a task result back to T. A nil result is the zero T,
// which is what a task returning a nil interface produces.
func typed[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, want %T", ErrResultType, v, zero)
	}
	return out, nil
}

// Len returns the number of tasks waiting to start.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Close stops accepting tasks and waits for queued tasks to settle or for
// ctx to end.
func (s *Scheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) process() {
	defer s.workers.Done()

	for {
		s.mu.Lock()
		front := s.queue.Front()
		if front == nil {
			s.processing = false
			s.mu.Unlock()
			return
		}
		t := s.queue.Remove(front).(*task)
		s.mu.Unlock()

		s.run(t)
	}
}

// run executes t once and either settles it or puts it back at the head.
func (s *Scheduler) run(t *task) {
	if err := t.ctx.Err(); err != nil {
		s.finish(t, nil, err, OutcomeAbandoned)
		return
	}
	if err := s.spacer.Wait(t.ctx); err != nil {
		s.finish(t, nil, err, OutcomeAbandoned)
		return
	}

	value, err := s.execute(t)
	s.spacer.Done()

	if err == nil {
		s.finish(t, value, nil, OutcomeResolved)
		return
	}

	class := resilience.Classify(err)
	if !class.Retryable() || t.retries >= s.cfg.MaxRetries {
		s.finish(t, nil, err, OutcomeRejected)
		return
	}

	delay := s.cfg.Backoff.Delay(t.retries + 1)
	s.metrics.RecordRetry(t.ctx, class.String(), delay)
	s.logger.Warn(t.ctx, "transient failure, backing off",
		observe.Field{Key: "task_id", Value: t.id},
		observe.Field{Key: "class", Value: class.String()},
		observe.Field{Key: "retry", Value: t.retries + 1},
		observe.Field{Key: "delay_ms", Value: delay.Milliseconds()},
		observe.Field{Key: "error", Value: err},
	)

	if serr := s.sleep(t.ctx, delay); serr != nil {
		s.finish(t, nil, serr, OutcomeAbandoned)
		return
	}

	t.retries++
	s.mu.Lock()
	s.queue.PushFront(t)
	s.mu.Unlock()
}

func (s *Scheduler) execute(t *task) (value any, err error) {
	ctx, span := s.tracer.Start(t.ctx, "genops.scheduler.task",
		trace.WithAttributes(
			attribute.String("genops.task.id", t.id),
			attribute.Int("genops.task.retries", t.retries),
		),
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return t.fn(ctx)
}

func (s *Scheduler) finish(t *task, value any, err error, outcome string) {
	ctx := context.WithoutCancel(t.ctx)
	s.metrics.AddQueueDepth(ctx, -1)
	s.metrics.RecordTask(ctx, outcome, s.now().Sub(t.enqueued), t.retries)

	fields := []observe.Field{
		{Key: "task_id", Value: t.id},
		{Key: "outcome", Value: outcome},
		{Key: "retries", Value: t.retries},
	}
	switch outcome {
	case OutcomeResolved:
		s.logger.Debug(ctx, "task settled", fields...)
	default:
		s.logger.Info(ctx, "task settled", append(fields, observe.Field{Key: "error", Value: err})...)
	}

	t.settle(value, err)
}
