// Package parallel provides the worker pool used to scatter CP-SAT
// multi-start searches and genetic-algorithm fitness evaluation
// across goroutines, and gather their results back in input order.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// WorkerPool is a fixed-size goroutine pool: NewWorkerPool starts
// exactly that many workers draining a shared task channel, and every
// submitted task runs on whichever worker picks it up next. It has no
// dynamic scaling and no built-in statistics — the CP-SAT driver and
// the GA/meta-optimizer scatter/gather helpers (scatter.go) are the
// only callers, and neither needs more than Submit and Shutdown.
type WorkerPool struct {
	taskChan     chan func()
	workerWg     sync.WaitGroup
	shutdownChan chan struct{}
	once         sync.Once
}

// ErrPoolShutdown is returned by Submit once the pool has been shut down.
var ErrPoolShutdown = errors.New("parallel: worker pool has been shut down")

// NewWorkerPool starts a pool of workers goroutines draining a shared
// task queue. If workers is 0 or negative, it defaults to the number
// of CPU cores.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskChan:     make(chan func(), workers*4),
		shutdownChan: make(chan struct{}),
	}

	wp.workerWg.Add(workers)
	for i := 0; i < workers; i++ {
		go wp.worker()
	}

	return wp
}

// worker drains the task channel until shutdown, recovering from a
// panicking task so a single bad search order or chromosome never
// takes the whole pool down.
func (wp *WorkerPool) worker() {
	defer wp.workerWg.Done()

	for {
		select {
		case task, ok := <-wp.taskChan:
			if !ok {
				return
			}
			func() {
				defer func() { recover() }()
				task()
			}()
		case <-wp.shutdownChan:
			return
		}
	}
}

// Submit queues task for execution, blocking until a slot opens, ctx
// is cancelled, or the pool is shut down.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	select {
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	default:
	}
	select {
	case wp.taskChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	}
}

// Shutdown stops accepting new tasks and waits for every worker to
// drain its in-flight task before returning. Safe to call more than once.
func (wp *WorkerPool) Shutdown() {
	wp.once.Do(func() {
		close(wp.shutdownChan)
		wp.workerWg.Wait()
	})
}
