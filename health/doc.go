// Package health reports whether genops can serve requests.
//
// A Checker reports one component. The Aggregator runs every registered
// checker in parallel under one deadline and folds the results into a
// Report whose status is the worst component status.
//
// Built-in checkers:
//   - StoreChecker pings the persistent tier and reports an open breaker
//     as degraded, since the cache keeps serving from memory.
//   - ThresholdChecker watches a gauge such as scheduler backlog or memory
//     tier size; NewQueueChecker is the scheduler form.
//
// HTTP handlers:
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg) // /healthz, /readyz, /health
package health
