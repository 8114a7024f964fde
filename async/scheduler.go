package async

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Scheduler runs continuations. Implementations decide on which goroutine a
// task executes; callers never assume it is their own.
type Scheduler interface {
	Go(task func())
}

type immediate struct{}

// Immediate runs every task inline on the goroutine that completes the
// future. It is intended for tests and for cheap continuations.
var Immediate Scheduler = immediate{}

func (immediate) Go(task func()) {
	task()
}

type goScheduler struct{}

// GoScheduler starts a new goroutine for every task.
var GoScheduler Scheduler = goScheduler{}

func (goScheduler) Go(task func()) {
	go task()
}

// Pool is a scheduler that bounds the number of tasks running at once.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a scheduler that runs at most size tasks concurrently.
func NewPool(size int64) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(size)}
}

// Go queues the task. The calling goroutine never waits for a slot.
func (p *Pool) Go(task func()) {
	go func() {
		// Acquire only fails on a cancelled context, background never is.
		if err := p.sem.Acquire(context.Background(), 1); err != nil {
			return
		}
		defer p.sem.Release(1)
		task()
	}()
}
