package resilite

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Result is one slot of a Dispatch outcome: either the task's value or its
// captured error, never both.
type Result[T any] struct {
	Value T
	Err   error
}

// ErrNilTask fills the slot of a nil task submitted to Dispatch.
var ErrNilTask = errors.New("resilite: nil task")

type dispatchConfig struct {
	limit int
}

// DispatchOption tunes a single Dispatch call.
type DispatchOption func(*dispatchConfig)

// WithLimit caps how many tasks run at once. n <= 0 means unlimited, the
// default.
func WithLimit(n int) DispatchOption {
	return func(c *dispatchConfig) { c.limit = n }
}

// Dispatch launches all tasks concurrently and waits for every one of them.
//
// The returned slice has one slot per task, in submission order regardless
// of completion order. A failing task never cancels or affects a sibling;
// its error is captured in its slot and nothing is raised on its behalf -
// the caller inspects each slot. Cancelling ctx applies to all tasks alike,
// since each receives it.
//
// Tasks must not share storage connections; each task opens its own scope.
func Dispatch[T any](ctx context.Context, tasks []Operation[T], opts ...DispatchOption) []Result[T] {
	var cfg dispatchConfig
	for _, o := range opts {
		o(&cfg)
	}

	var sem *semaphore.Weighted
	if cfg.limit > 0 {
		sem = semaphore.NewWeighted(int64(cfg.limit))
	}

	results := make([]Result[T], len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		if task == nil {
			results[i] = Result[T]{Err: ErrNilTask}
			continue
		}
		wg.Add(1)
		go func(i int, task Operation[T]) {
			defer wg.Done()
			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					results[i] = Result[T]{Err: err}
					return
				}
				defer sem.Release(1)
			}
			v, err := task(ctx)
			results[i] = Result[T]{Value: v, Err: err}
		}(i, task)
	}
	wg.Wait()
	return results
}
