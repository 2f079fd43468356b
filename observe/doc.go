// Package observe provides observability primitives for generation calls,
// the request scheduler and the tiered result cache.
//
// It wires OpenTelemetry tracing and metrics with a zap-backed structured
// logger. Nothing here performs I/O beyond exporter setup; the scheduler,
// cache and service packages receive the pieces they need by injection.
package observe
