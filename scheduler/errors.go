package scheduler

import "errors"

var (
	// ErrClosed is returned by Add after Close.
	ErrClosed = errors.New("scheduler: scheduler is closed")

	// ErrNilTask is returned by Add for a nil task.
	ErrNilTask = errors.New("scheduler: task is nil")

	// ErrTaskPanic wraps a panic raised by a task.
	ErrTaskPanic = errors.New("scheduler: task panicked")

	// ErrResultType is returned by Do when a task result is not of the
	// requested type.
	ErrResultType = errors.New("scheduler: unexpected result type")
)
