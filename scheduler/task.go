package scheduler

import (
	"context"
	"time"
)

// Task is a unit of work run by the scheduler. It must honor ctx.
type Task func(ctx context.Context) (any, error)

type result struct {
	value any
	err   error
}

// task is owned by the scheduler from enqueue until it settles.
type task struct {
	id       string
	fn       Task
	ctx      context.Context
	retries  int
	enqueued time.Time
	done     chan result // buffered; written exactly once
}

func (t *task) settle(value any, err error) {
	t.done <- result{value: value, err: err}
}
