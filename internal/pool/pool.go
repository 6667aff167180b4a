// Package pool runs a fixed number of independent tasks with a bounded
// number of goroutines. It backs the two fan-out points of a run: idea
// generation across the model roster and image candidate generation
// within one idea.
package pool

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxWorkers caps outbound concurrency for any single fan-out step.
const DefaultMaxWorkers = 5

// Result pairs a task's output with the index it was dispatched with.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Workers returns min(items, limit, DefaultMaxWorkers), never less than one.
func Workers(items, limit int) int {
	if limit <= 0 || limit > DefaultMaxWorkers {
		limit = DefaultMaxWorkers
	}
	if items < limit {
		limit = items
	}
	if limit < 1 {
		return 1
	}
	return limit
}

// Run executes task for every index in [0, n) using at most
// Workers(n, maxWorkers) goroutines and returns once every task has
// finished. Results are in completion order, not dispatch order.
// A failing or panicking task never cancels its siblings.
func Run[T any](ctx context.Context, n, maxWorkers int, task func(ctx context.Context, i int) (T, error)) []Result[T] {
	if n <= 0 {
		return nil
	}

	var (
		mu      sync.Mutex
		results = make([]Result[T], 0, n)
	)

	var g errgroup.Group
	g.SetLimit(Workers(n, maxWorkers))

	for i := 0; i < n; i++ {
		g.Go(func() error {
			v, err := runTask(ctx, i, task)
			mu.Lock()
			results = append(results, Result[T]{Index: i, Value: v, Err: err})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func runTask[T any](ctx context.Context, i int, task func(ctx context.Context, i int) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %d panicked: %v", i, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return v, err
	}
	return task(ctx, i)
}
