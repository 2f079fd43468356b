// Package resilience provides the failure-handling primitives used around
// the generation service and the persistent cache tier.
//
//   - Classify sorts errors into rate-limited, overloaded and permanent
//     classes. Only the first two are worth retrying.
//   - Backoff computes exponential retry delays.
//   - Spacer enforces a minimum gap between the completion of one call and
//     the start of the next.
//   - CircuitBreaker and Timeout bound how long callers wait on a failing
//     dependency; Executor composes them.
//
// Usage:
//
//	exec := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	        MaxFailures:  5,
//	        ResetTimeout: 30 * time.Second,
//	    })),
//	    resilience.WithTimeout(2*time.Second),
//	)
//
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return pingStore(ctx)
//	})
package resilience
