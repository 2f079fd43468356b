package cache

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// flightGroup deduplicates concurrent loads of the same key.
//
// The load runs on a context detached from the first caller's cancellation,
// so a caller that gives up never cancels the load for the others. The key
// is released before any waiter observes the result.
type flightGroup struct {
	group singleflight.Group
}

func (f *flightGroup) do(ctx context.Context, key string, load func(context.Context) (Result, error)) (Result, bool, error) {
	detached := context.WithoutCancel(ctx)

	ch := f.group.DoChan(key, func() (v any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrFetchPanic, r)
			}
		}()
		return load(detached)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Result{}, res.Shared, res.Err
		}
		r := res.Val.(Result)
		r.Entry = cloneEntry(r.Entry)
		return r, res.Shared, nil
	case <-ctx.Done():
		return Result{}, false, ctx.Err()
	}
}
