package parallel

import (
	"context"
	"errors"
	"runtime"
)

// ErrPoolCreationFailed is the simulated failure SetRaisePoolException
// injects to exercise Scatter's sequential-fallback path.
var ErrPoolCreationFailed = errors.New("parallel: worker pool creation failed")

// Result wraps a single task's outcome so a failed task never aborts
// the rest of a scatter/gather batch; callers filter Err before using
// Value, mirroring the per-task error swallowing both the CP-SAT
// multi-start search and the GA's parallel fitness evaluation rely on.
type Result[T any] struct {
	Value T
	Err   error
}

// EvaluateAll runs fn over every item on the pool, in order-preserving
// fashion: result[i] always corresponds to items[i] regardless of
// which worker finished first. If pool is nil, it falls back to
// sequential execution in the calling goroutine — the same graceful
// degradation Scatter applies when pool creation itself fails.
func EvaluateAll[T, R any](ctx context.Context, pool *WorkerPool, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	out := make([]Result[R], len(items))

	if pool == nil {
		for i, item := range items {
			v, err := fn(ctx, item)
			out[i] = Result[R]{Value: v, Err: err}
		}
		return out
	}

	done := make(chan struct{}, len(items))
	for i, item := range items {
		i, item := i, item
		err := pool.Submit(ctx, func() {
			defer func() { done <- struct{}{} }()
			v, err := fn(ctx, item)
			out[i] = Result[R]{Value: v, Err: err}
		})
		if err != nil {
			out[i] = Result[R]{Err: err}
			done <- struct{}{}
		}
	}
	for range items {
		<-done
	}
	return out
}

// ScatterLogger receives the one-line message Scatter emits when pool
// creation fails and it falls back to sequential evaluation
// (spec.md §4.5's "fall back to single-threaded mapping and log a
// fallback message"). Defaults to a no-op; callers wanting the
// message in their own logger reassign it once at startup.
var ScatterLogger = func(msg string) {}

// Scatter evaluates fn over items for the GA's and meta-optimizer's
// parallel fitness evaluation (spec.md §4.5 "Parallel fitness",
// §5 item 2/3): a worker returns (fitness, nil) on success or
// (0, err) on failure, and a failing worker yields nil at that index
// rather than aborting the batch. workerOverride <= 0 selects
// max(1, NumCPU-2). Populations of 4 items or fewer, or a resolved
// worker count of 1, short-circuit to sequential execution, as does
// the test-mode flag forcing sequential evaluation.
func Scatter[T any](ctx context.Context, items []T, workerOverride int, fn func(T) (float64, error)) []*float64 {
	out := make([]*float64, len(items))

	workers := workerOverride
	if workers <= 0 {
		workers = runtime.NumCPU() - 2
		if workers < 1 {
			workers = 1
		}
	}

	sequential := func() {
		for i, item := range items {
			if RaiseTaskException() {
				continue
			}
			v, err := fn(item)
			if err != nil {
				continue
			}
			val := v
			out[i] = &val
		}
	}

	if TestMode() || workers == 1 || len(items) <= 4 {
		sequential()
		return out
	}

	if RaisePoolException() {
		ScatterLogger("parallel: worker pool creation failed, falling back to sequential fitness evaluation")
		sequential()
		return out
	}

	pool := NewWorkerPool(workers)
	defer pool.Shutdown()

	done := make(chan struct{}, len(items))
	for i, item := range items {
		i, item := i, item
		err := pool.Submit(ctx, func() {
			defer func() { done <- struct{}{} }()
			if RaiseTaskException() {
				return
			}
			v, err := fn(item)
			if err != nil {
				return
			}
			val := v
			out[i] = &val
		})
		if err != nil {
			done <- struct{}{}
		}
	}
	for range items {
		<-done
	}
	return out
}
