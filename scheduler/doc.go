// Package scheduler serializes calls to a rate-limited external service.
//
// A Scheduler runs one task at a time in FIFO order, waits a minimum
// interval after each call completes before starting the next, and retries
// rate-limit and overload failures with exponential backoff. A retried task
// goes back to the head of the queue, ahead of tasks enqueued after it.
//
// Every other failure, or a transient failure past the retry ceiling, is
// returned to the caller unchanged.
//
// A caller whose context ends stops waiting at once. If its task has not
// started yet it is dropped without running.
package scheduler
