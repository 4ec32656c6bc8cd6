// Package parallel runs independent logic queries concurrently. Queries
// share nothing (every search owns its states), so running them side by
// side needs only a bounded worker pool and a place to collect results.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// Task is one named unit of work, typically a complete query or demo.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Result reports one finished task.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Pool executes tasks with bounded concurrency.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given worker count. A non-positive count
// defaults to the number of CPU cores.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// RunAll executes every task and returns results in task order. Tasks
// started after the context is cancelled fail with the context error;
// already running tasks are responsible for honoring cancellation
// themselves.
func (p *Pool) RunAll(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			var err error
			if ctx.Err() != nil {
				err = ctx.Err()
			} else {
				err = task.Run(ctx)
			}
			results[i] = Result{Name: task.Name, Err: err, Duration: time.Since(start)}
		}(i, task)
	}

	wg.Wait()
	return results
}
