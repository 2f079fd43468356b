// Package cache provides a tiered result cache for generation calls.
//
// Results are keyed by "<operation>_<hash>" where the hash is a 53-bit
// mix of the canonical JSON of the request input. Lookups consult an
// in-process Memory tier first and a persistent store.Store second. On a
// miss, concurrent callers presenting the same key share one fetch; the
// first caller's fetch runs to completion even if that caller goes away.
//
// Persistent writes happen in the background and never fail the caller.
// Call Tiered.Flush before shutdown to wait for them.
package cache
