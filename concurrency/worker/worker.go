// Package worker runs context-aware tasks on a bounded goroutine pool.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrQueueFull   = errors.New("task queue is full")
	ErrPoolStopped = errors.New("worker pool is stopped")
)

// Task is one unit of work. It must honor ctx cancellation.
type Task func(ctx context.Context) error

// Config represents pool configuration
type Config struct {
	MaxWorkers  int           // maximum number of workers
	QueueSize   int           // task queue size
	TaskTimeout time.Duration // timeout for single task, zero means none
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxWorkers:  4,
		QueueSize:   256,
		TaskTimeout: 5 * time.Minute,
	}
}

// Validate validates configuration
func (cfg *Config) Validate() error {
	if cfg.MaxWorkers < 1 {
		return errors.New("max workers must be greater than 0")
	}
	if cfg.QueueSize < 1 {
		return errors.New("queue size must be greater than 0")
	}
	if cfg.TaskTimeout < 0 {
		return errors.New("task timeout must be greater than or equal to 0")
	}
	return nil
}

// Metrics tracks pool's operational metrics
type Metrics struct {
	ActiveWorkers  atomic.Int64
	PendingTasks   atomic.Int64
	CompletedTasks atomic.Int64
	FailedTasks    atomic.Int64
	ProcessingTime atomic.Int64 // nanoseconds
}

// Reset resets all metrics to zero
func (m *Metrics) Reset() {
	m.ActiveWorkers.Store(0)
	m.PendingTasks.Store(0)
	m.CompletedTasks.Store(0)
	m.FailedTasks.Store(0)
	m.ProcessingTime.Store(0)
}

type job struct {
	ctx  context.Context
	fn   Task
	done chan error
}

// Pool represents a worker pool
type Pool struct {
	maxWorkers  int
	queueSize   int
	taskTimeout time.Duration

	tasks   chan job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool

	metrics *Metrics
}

// NewPool creates a new worker pool
//
// Usage:
//
//	pool := worker.NewPool(&worker.Config{MaxWorkers: 4, QueueSize: 64})
//	pool.Start()
//	defer pool.Stop(context.Background())
//
//	err := pool.RunAll(ctx, []worker.Task{
//	    func(ctx context.Context) error { return replayChat(ctx, "chat-1") },
//	    func(ctx context.Context) error { return replayChat(ctx, "chat-2") },
//	})
func NewPool(cfg *Config) *Pool {
	if cfg == nil || cfg.Validate() != nil {
		cfg = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		maxWorkers:  cfg.MaxWorkers,
		queueSize:   cfg.QueueSize,
		taskTimeout: cfg.TaskTimeout,
		tasks:       make(chan job, cfg.QueueSize),
		ctx:         ctx,
		cancel:      cancel,
		metrics:     &Metrics{},
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop stops the worker pool. Queued tasks that never ran fail with ErrPoolStopped.
func (p *Pool) Stop(ctx context.Context) {
	p.cancel()

	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}

	for {
		select {
		case j := <-p.tasks:
			p.metrics.PendingTasks.Add(-1)
			j.done <- ErrPoolStopped
		default:
			return
		}
	}
}

// Submit queues a task without blocking. The returned channel receives its result.
func (p *Pool) Submit(ctx context.Context, fn Task) (<-chan error, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return nil, ErrPoolStopped
	}

	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case p.tasks <- j:
		p.metrics.PendingTasks.Add(1)
		return j.done, nil
	default:
		return nil, ErrQueueFull
	}
}

// submitWait queues a task, waiting for room in the queue.
func (p *Pool) submitWait(ctx context.Context, fn Task) (<-chan error, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return nil, ErrPoolStopped
	}

	j := job{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case p.tasks <- j:
		p.metrics.PendingTasks.Add(1)
		return j.done, nil
	case <-p.ctx.Done():
		return nil, ErrPoolStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RunAll runs every task on the pool and waits for all of them.
// Failures are joined; submission stops at the first error.
func (p *Pool) RunAll(ctx context.Context, fns []Task) error {
	results := make([]<-chan error, 0, len(fns))
	var errs []error
	for _, fn := range fns {
		done, err := p.submitWait(ctx, fn)
		if err != nil {
			errs = append(errs, err)
			break
		}
		results = append(results, done)
	}
	for _, done := range results {
		if err := <-done; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// worker represents a worker goroutine
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case j := <-p.tasks:
			j.done <- p.processTask(j)
		}
	}
}

// processTask processes a single task
func (p *Pool) processTask(j job) (err error) {
	start := time.Now()
	p.metrics.ActiveWorkers.Add(1)
	p.metrics.PendingTasks.Add(-1)

	defer func() {
		p.metrics.ActiveWorkers.Add(-1)
		p.metrics.ProcessingTime.Add(time.Since(start).Nanoseconds())

		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
		if err != nil {
			p.metrics.FailedTasks.Add(1)
		} else {
			p.metrics.CompletedTasks.Add(1)
		}
	}()

	ctx := j.ctx
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}

	return j.fn(ctx)
}

// GetMetrics returns the current metrics
func (p *Pool) GetMetrics() map[string]int64 {
	return map[string]int64{
		"active_workers":  p.metrics.ActiveWorkers.Load(),
		"pending_tasks":   p.metrics.PendingTasks.Load(),
		"completed_tasks": p.metrics.CompletedTasks.Load(),
		"failed_tasks":    p.metrics.FailedTasks.Load(),
		"processing_time": p.metrics.ProcessingTime.Load(),
	}
}

// IsBusy returns whether the pool is busy
func (p *Pool) IsBusy() bool {
	return p.metrics.ActiveWorkers.Load() >= int64(p.maxWorkers) ||
		p.metrics.PendingTasks.Load() >= int64(p.queueSize)
}

// IsIdle returns whether the pool is idle
func (p *Pool) IsIdle() bool {
	return p.metrics.ActiveWorkers.Load() == 0
}
