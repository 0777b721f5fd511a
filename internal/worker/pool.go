// Package worker provides a job queue drained by a fixed set of workers.
// A pool with one worker serializes every job onto a single goroutine.
package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrPoolStopped is returned for jobs submitted to, or still queued on, a
// stopped pool.
var ErrPoolStopped = errors.New("worker pool stopped")

// Job is a unit of work. The context is cancelled when either the
// submitter's context ends or the pool is stopped.
type Job func(ctx context.Context) error

// Task states. A queued task is claimed exactly once, either by a worker
// that runs it or by a waiter that gives up on it.
const (
	taskQueued int32 = iota
	taskRunning
	taskAbandoned
)

type task struct {
	ctx   context.Context
	job   Job
	done  chan error
	state *int32
}

// Pool manages a queue of jobs and the workers that run them.
type Pool struct {
	numWorkers int
	bufferSize int
	jobs       chan task
	wg         sync.WaitGroup

	mu       sync.RWMutex // held for reading while sending on jobs
	closed   bool
	stopFlag int32 // Atomic flag for early termination
	ctx      context.Context
	cancel   context.CancelFunc

	startOnce sync.Once
	closeOnce sync.Once
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithWorkers sets the number of worker goroutines.
func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n >= 1 {
			p.numWorkers = n
		}
	}
}

// WithBufferSize sets the job queue buffer size.
func WithBufferSize(size int) PoolOption {
	return func(p *Pool) {
		if size >= 1 {
			p.bufferSize = size
		}
	}
}

// NewPool creates a pool. Default: 1 worker, buffer size of 16.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		numWorkers: 1,
		bufferSize: 16,
	}
	for _, opt := range opts {
		opt(p)
	}
	// Create channels after options are applied
	p.jobs = make(chan task, p.bufferSize)
	p.ctx, p.cancel = context.WithCancel(context.Background())
	return p
}

// Start starts the worker goroutines. Calling Start more than once is a no-op.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.numWorkers; i++ {
			p.wg.Add(1)
			go p.worker()
		}
	})
}

// worker runs jobs from the queue until it is closed.
func (p *Pool) worker() {
	defer p.wg.Done()

	for t := range p.jobs {
		if p.IsStopped() {
			t.done <- ErrPoolStopped // Drain without running
			continue
		}
		if err := t.ctx.Err(); err != nil {
			t.done <- err
			continue
		}
		if !atomic.CompareAndSwapInt32(t.state, taskQueued, taskRunning) {
			t.done <- context.Canceled
			continue
		}
		t.done <- p.run(t)
	}
}

func (p *Pool) run(t task) error {
	ctx, cancel := context.WithCancel(t.ctx)
	defer cancel()
	release := context.AfterFunc(p.ctx, cancel)
	defer release()

	return t.job(ctx)
}

// Go queues job and returns a channel that receives its result exactly once.
func (p *Pool) Go(ctx context.Context, job Job) <-chan error {
	return p.enqueue(ctx, job, new(int32))
}

func (p *Pool) enqueue(ctx context.Context, job Job, state *int32) <-chan error {
	done := make(chan error, 1)

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed || p.IsStopped() {
		done <- ErrPoolStopped
		return done
	}

	select {
	case p.jobs <- task{ctx: ctx, job: job, done: done, state: state}:
	case <-ctx.Done():
		done <- ctx.Err()
	case <-p.ctx.Done():
		done <- ErrPoolStopped
	}
	return done
}

// Do queues job and waits for it to finish. Do returns ErrPoolStopped as
// soon as the pool is stopped, without waiting for the job to unwind. If ctx
// ends while the job is still queued, Do returns ctx.Err() and the job never
// runs. A job that has started is waited for.
func (p *Pool) Do(ctx context.Context, job Job) error {
	state := new(int32)
	done := p.enqueue(ctx, job, state)
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if atomic.CompareAndSwapInt32(state, taskQueued, taskAbandoned) {
			return ctx.Err()
		}
		return p.wait(done)
	case <-p.ctx.Done():
		return p.stopped(done)
	}
}

// wait blocks on a running job, giving up once the pool is stopped.
func (p *Pool) wait(done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-p.ctx.Done():
		return p.stopped(done)
	}
}

func (p *Pool) stopped(done <-chan error) error {
	select {
	case err := <-done:
		return err
	default:
		return ErrPoolStopped
	}
}

// Stop cancels the running jobs and fails every queued one with ErrPoolStopped.
func (p *Pool) Stop() {
	atomic.StoreInt32(&p.stopFlag, 1)
	p.cancel()
}

// IsStopped returns true if the pool has been stopped.
func (p *Pool) IsStopped() bool {
	return atomic.LoadInt32(&p.stopFlag) != 0
}

// Close stops the pool, closes the queue and waits for all workers to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.Stop()
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()
		p.wg.Wait()
	})
}
