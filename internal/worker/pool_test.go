package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type mockResult struct {
	id  int
	err error
}

func (r *mockResult) Err() error {
	return r.err
}

type mockJob struct {
	id        int
	duration  time.Duration
	shouldErr bool
	executed  *int32
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{id: j.id, err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{id: j.id, err: errors.New("job error")}
	}
	return &mockResult{id: j.id}
}

type panicJob struct{}

func (panicJob) Execute(ctx context.Context) Result {
	panic("boom")
}

func TestNewPool(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{5, 5},
		{0, 1},
		{-1, 1},
	}
	for _, tt := range tests {
		if p := NewPool(context.Background(), tt.in); p.workers != tt.want {
			t.Errorf("NewPool(%d): expected %d workers, got %d", tt.in, tt.want, p.workers)
		}
	}
}

func TestPool_ExecutionOrder(t *testing.T) {
	pool := NewPool(context.Background(), 4)
	pool.Start()

	var executed int32
	count := 20
	for i := 0; i < count; i++ {
		// later jobs finish first
		pool.Submit(&mockJob{id: i, duration: time.Duration(count-i) * time.Millisecond, executed: &executed})
	}

	results := pool.Wait()
	if len(results) != count {
		t.Fatalf("expected %d results, got %d", count, len(results))
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
	for i, r := range results {
		if got := r.(*mockResult).id; got != i {
			t.Errorf("result %d belongs to job %d", i, got)
		}
	}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var current, maxConcurrent int32
	var mu sync.Mutex

	job := func() Job {
		return jobFunc(func(ctx context.Context) Result {
			curr := atomic.AddInt32(&current, 1)
			mu.Lock()
			if curr > maxConcurrent {
				maxConcurrent = curr
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			return &mockResult{}
		})
	}

	for i := 0; i < 50; i++ {
		pool.Submit(job())
	}
	pool.Wait()

	mu.Lock()
	defer mu.Unlock()
	if maxConcurrent > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", maxConcurrent, workers)
	}
}

type jobFunc func(ctx context.Context) Result

func (f jobFunc) Execute(ctx context.Context) Result { return f(ctx) }

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(&mockJob{shouldErr: true})
	pool.Submit(&mockJob{})
	pool.Submit(panicJob{})

	results := pool.Wait()
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err() == nil {
		t.Error("expected first job to fail")
	}
	if results[1].Err() != nil {
		t.Errorf("expected second job to succeed, got %v", results[1].Err())
	}
	if results[2] == nil || results[2].Err() == nil {
		t.Error("expected panic to be reported as an error result")
	}
}

func TestPool_SubmitAfterWait(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	pool.Start()
	pool.Wait()

	if pool.Submit(&mockJob{}) {
		t.Error("expected Submit to refuse after Wait")
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan bool)
	go func() { done <- pool.Submit(&mockJob{}) }()

	select {
	case accepted := <-done:
		if accepted {
			t.Error("expected Submit to refuse after Shutdown")
		}
	case <-time.After(time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(jobFunc(func(ctx context.Context) Result {
		close(started)
		<-ctx.Done()
		return &mockResult{err: ctx.Err()}
	}))

	<-started
	cancel()

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after parent cancellation")
	}
}
