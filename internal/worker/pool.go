// Package worker runs checks concurrently and paces outbound calls per host.
package worker

import (
	"context"
	"fmt"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	Err() error
}

// panicResult is recorded for a job that panicked
type panicResult struct{ err error }

func (r panicResult) Err() error { return r.err }

type queuedJob struct {
	index int
	job   Job
}

type indexedResult struct {
	index  int
	result Result
}

// Pool executes jobs on a fixed number of goroutines.
// Wait returns results in submission order.
type Pool struct {
	workers   int
	jobs      chan queuedJob
	results   chan indexedResult
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	submitted int
	closed    bool
	collected []indexedResult
	done      chan struct{}
}

// NewPool creates a pool bound to ctx. Cancelling ctx stops the workers.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Pool{
		workers: workers,
		jobs:    make(chan queuedJob, workers*2),
		results: make(chan indexedResult, workers*2),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
	go func() {
		defer close(p.done)
		for r := range p.results {
			p.collected = append(p.collected, r)
		}
	}()
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case q, ok := <-p.jobs:
			if !ok || p.ctx.Err() != nil {
				return
			}
			res := execute(p.ctx, q.job)
			select {
			case p.results <- indexedResult{index: q.index, result: res}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

func execute(ctx context.Context, job Job) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = panicResult{err: fmt.Errorf("job panicked: %v", r)}
		}
	}()
	return job.Execute(ctx)
}

// Submit queues a job. It reports false once the pool is closed or cancelled.
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.ctx.Err() != nil {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobs <- queuedJob{index: p.submitted, job: job}:
		p.submitted++
		return true
	}
}

// Wait closes the queue, waits for the workers and returns the results in
// submission order. Jobs dropped by cancellation leave a nil slot.
// Start must have been called.
func (p *Pool) Wait() []Result {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	n := p.submitted
	p.mu.Unlock()

	<-p.done
	p.cancel()
	ordered := make([]Result, n)
	for _, r := range p.collected {
		ordered[r.index] = r.result
	}
	return ordered
}

// Shutdown cancels running jobs and waits for the workers to exit
func (p *Pool) Shutdown() {
	p.cancel()
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
}
