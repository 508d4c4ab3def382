package workers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/killallgit/wortschatz-api/internal/metrics"
)

var (
	// ErrQueueFull is returned when no queue slot is free
	ErrQueueFull = errors.New("processing queue is full")
	// ErrPoolStopped is returned for work submitted after Stop
	ErrPoolStopped = errors.New("worker pool stopped")
)

// Func is a unit of work executed on a pool worker
type Func func(ctx context.Context) error

// job is a queued Func and the channel its result is delivered on
type job struct {
	ctx    context.Context
	fn     Func
	result chan error
}

// Pool runs CPU heavy work on a fixed number of goroutines
type Pool struct {
	workers    int
	jobTimeout time.Duration
	queue      chan *job
	stopChan   chan struct{}
	wg         sync.WaitGroup
	mu         sync.RWMutex
	started    bool
	stopped    bool
}

// NewPool creates a pool with workerCount workers and room for queueSize waiting jobs
func NewPool(workerCount, queueSize int, jobTimeout time.Duration) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Pool{
		workers:    workerCount,
		jobTimeout: jobTimeout,
		queue:      make(chan *job, queueSize),
		stopChan:   make(chan struct{}),
	}
}

// Start launches the workers
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrPoolStopped
	}
	if p.started {
		return fmt.Errorf("worker pool already started")
	}

	log.Printf("[INFO] Starting worker pool with %d workers", p.workers)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(fmt.Sprintf("worker-%d", i+1))
	}
	p.started = true
	return nil
}

// Stop stops accepting work, lets running jobs finish and fails queued ones
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.stopChan)
	p.mu.Unlock()

	log.Printf("[INFO] Stopping worker pool")
	p.wg.Wait()

	// Nothing reads the queue anymore
	for {
		select {
		case j := <-p.queue:
			metrics.PoolQueueDepth.Dec()
			j.result <- ErrPoolStopped
		default:
			return
		}
	}
}

// Do runs fn on a worker and waits for it to finish or for ctx to end.
// It fails fast with ErrQueueFull when every worker and queue slot is taken.
func (p *Pool) Do(ctx context.Context, fn Func) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j := &job{ctx: ctx, fn: fn, result: make(chan error, 1)}

	p.mu.RLock()
	if p.stopped || !p.started {
		p.mu.RUnlock()
		return ErrPoolStopped
	}
	select {
	case p.queue <- j:
		metrics.PoolQueueDepth.Inc()
	default:
		p.mu.RUnlock()
		metrics.PoolRejectedTotal.Inc()
		return ErrQueueFull
	}
	p.mu.RUnlock()

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		// The worker sees the same context and abandons the job
		return ctx.Err()
	}
}

func (p *Pool) run(id string) {
	defer p.wg.Done()

	log.Printf("[DEBUG] Worker %s starting", id)
	defer log.Printf("[DEBUG] Worker %s stopped", id)

	for {
		select {
		case <-p.stopChan:
			return
		case j := <-p.queue:
			metrics.PoolQueueDepth.Dec()
			j.result <- p.execute(id, j)
		}
	}
}

func (p *Pool) execute(id string, j *job) (err error) {
	if err := j.ctx.Err(); err != nil {
		return err
	}

	ctx := j.ctx
	if p.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.jobTimeout)
		defer cancel()
	}

	metrics.PoolBusyWorkers.Inc()
	defer metrics.PoolBusyWorkers.Dec()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] Worker %s: job panicked: %v\n%s", id, r, debug.Stack())
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	return j.fn(ctx)
}
