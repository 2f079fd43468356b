package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records live generation calls.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordGeneration records a live call with duration and error status.
	RecordGeneration(ctx context.Context, meta OperationMeta, duration time.Duration, err error)
}

// SchedulerMetrics records request scheduler activity.
type SchedulerMetrics interface {
	// RecordTask records a settled task. Outcome is "resolved", "rejected" or "abandoned".
	RecordTask(ctx context.Context, outcome string, wait time.Duration, retries int)

	// RecordRetry records a retry of a task after a transient failure.
	RecordRetry(ctx context.Context, class string, delay time.Duration)

	// AddQueueDepth adjusts the pending task gauge.
	AddQueueDepth(ctx context.Context, delta int64)
}

// CacheMetrics records tiered cache activity.
type CacheMetrics interface {
	// RecordLookup records a lookup against a tier ("memory" or "store").
	RecordLookup(ctx context.Context, operation, tier string, hit bool)

	// RecordFetch records a live fetch. Shared is true when the caller
	// attached to a fetch started by another caller.
	RecordFetch(ctx context.Context, operation string, shared bool, err error)

	// RecordStoreError records a persistent tier failure ("get" or "set").
	RecordStoreError(ctx context.Context, op string)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates generation metrics on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"genops.generate.total",
		metric.WithDescription("Total number of live generation calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"genops.generate.errors",
		metric.WithDescription("Total number of failed live generation calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"genops.generate.duration_ms",
		metric.WithDescription("Live generation call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) RecordGeneration(ctx context.Context, meta OperationMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("genops.operation", meta.Operation),
	}
	if meta.Model != "" {
		attrs = append(attrs, attribute.String("genops.model", meta.Model))
	}
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

type schedulerMetrics struct {
	tasks      metric.Int64Counter
	retries    metric.Int64Counter
	queueWait  metric.Float64Histogram
	queueDepth metric.Int64UpDownCounter
}

// NewSchedulerMetrics creates scheduler instruments on the given meter.
func NewSchedulerMetrics(meter metric.Meter) (SchedulerMetrics, error) {
	tasks, err := meter.Int64Counter(
		"genops.scheduler.tasks",
		metric.WithDescription("Settled scheduler tasks by outcome"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, err
	}

	retries, err := meter.Int64Counter(
		"genops.scheduler.retries",
		metric.WithDescription("Task retries after transient failures"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	queueWait, err := meter.Float64Histogram(
		"genops.scheduler.queue_wait_ms",
		metric.WithDescription("Time from enqueue to settlement in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	queueDepth, err := meter.Int64UpDownCounter(
		"genops.scheduler.queue_depth",
		metric.WithDescription("Tasks waiting in or executing from the scheduler queue"),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		return nil, err
	}

	return &schedulerMetrics{
		tasks:      tasks,
		retries:    retries,
		queueWait:  queueWait,
		queueDepth: queueDepth,
	}, nil
}

func (m *schedulerMetrics) RecordTask(ctx context.Context, outcome string, wait time.Duration, retries int) {
	opt := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Bool("retried", retries > 0),
	)
	m.tasks.Add(ctx, 1, opt)
	m.queueWait.Record(ctx, float64(wait.Milliseconds()), opt)
}

func (m *schedulerMetrics) RecordRetry(ctx context.Context, class string, delay time.Duration) {
	m.retries.Add(ctx, 1, metric.WithAttributes(attribute.String("class", class)))
}

func (m *schedulerMetrics) AddQueueDepth(ctx context.Context, delta int64) {
	m.queueDepth.Add(ctx, delta)
}

type cacheMetrics struct {
	lookups     metric.Int64Counter
	fetches     metric.Int64Counter
	storeErrors metric.Int64Counter
}

// NewCacheMetrics creates tiered cache instruments on the given meter.
func NewCacheMetrics(meter metric.Meter) (CacheMetrics, error) {
	lookups, err := meter.Int64Counter(
		"genops.cache.lookups",
		metric.WithDescription("Cache lookups by tier and outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	fetches, err := meter.Int64Counter(
		"genops.cache.fetches",
		metric.WithDescription("Live fetches issued or joined on cache miss"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	storeErrors, err := meter.Int64Counter(
		"genops.cache.store_errors",
		metric.WithDescription("Persistent tier failures treated as misses"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &cacheMetrics{
		lookups:     lookups,
		fetches:     fetches,
		storeErrors: storeErrors,
	}, nil
}

func (m *cacheMetrics) RecordLookup(ctx context.Context, operation, tier string, hit bool) {
	m.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("genops.operation", operation),
		attribute.String("tier", tier),
		attribute.Bool("hit", hit),
	))
}

func (m *cacheMetrics) RecordFetch(ctx context.Context, operation string, shared bool, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.fetches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("genops.operation", operation),
		attribute.Bool("shared", shared),
		attribute.String("outcome", outcome),
	))
}

func (m *cacheMetrics) RecordStoreError(ctx context.Context, op string) {
	m.storeErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

type noopMetrics struct{}

// NopMetrics returns generation metrics that record nothing.
func NopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordGeneration(context.Context, OperationMeta, time.Duration, error) {}

type noopSchedulerMetrics struct{}

// NopSchedulerMetrics returns scheduler metrics that record nothing.
func NopSchedulerMetrics() SchedulerMetrics { return noopSchedulerMetrics{} }

func (noopSchedulerMetrics) RecordTask(context.Context, string, time.Duration, int) {}
func (noopSchedulerMetrics) RecordRetry(context.Context, string, time.Duration)     {}
func (noopSchedulerMetrics) AddQueueDepth(context.Context, int64)                   {}

type noopCacheMetrics struct{}

// NopCacheMetrics returns cache metrics that record nothing.
func NopCacheMetrics() CacheMetrics { return noopCacheMetrics{} }

func (noopCacheMetrics) RecordLookup(context.Context, string, string, bool) {}
func (noopCacheMetrics) RecordFetch(context.Context, string, bool, error)   {}
func (noopCacheMetrics) RecordStoreError(context.Context, string)           {}
