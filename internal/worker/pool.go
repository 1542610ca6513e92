package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

var ErrPoolStopped = errors.New("worker pool stopped")

// Job is a single persistence call. Err, if set, receives the result of a
// failed Run; it runs on the worker goroutine.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
	Err  func(ctx context.Context, err error)
}

// Pool runs submitted jobs on a fixed number of workers. Jobs are started in
// submission order but with more than one worker they may finish in any order.
type Pool struct {
	logger  *zap.Logger
	count   int
	jobs    chan Job
	workers conc.WaitGroup
	pending sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
	stop    chan struct{}
}

func NewPool(logger *zap.Logger, count, queueSize int) *Pool {
	if count < 1 {
		count = 1
	}
	if queueSize < 1 {
		queueSize = 64
	}
	return &Pool{
		logger: logger,
		count:  count,
		jobs:   make(chan Job, queueSize),
		stop:   make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	p.logger.Info("Starting worker pool", zap.Int("workers", p.count))

	for i := 0; i < p.count; i++ {
		id := i
		p.workers.Go(func() { p.worker(ctx, id) })
	}
}

// Submit enqueues job. It blocks only when the queue is full.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrPoolStopped
	}
	p.pending.Add(1)
	p.mu.Unlock()

	p.jobs <- job
	return nil
}

// Drain blocks until every submitted job has finished, including jobs that
// were submitted by other jobs while draining.
func (p *Pool) Drain() {
	p.pending.Wait()
}

func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.logger.Info("Stopping worker pool...")
	p.Drain()
	close(p.stop)
	p.workers.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	for {
		select {
		case <-p.stop:
			return
		case job := <-p.jobs:
			p.process(ctx, id, job)
		}
	}
}

func (p *Pool) process(ctx context.Context, workerID int, job Job) {
	defer p.pending.Done()

	started := time.Now()
	err := job.Run(ctx)
	if err != nil {
		p.logger.Error("job failed",
			zap.Int("worker", workerID),
			zap.String("job", job.Name),
			zap.Error(err),
		)
		if job.Err != nil {
			job.Err(ctx, err)
		}
		return
	}

	p.logger.Debug("job completed",
		zap.Int("worker", workerID),
		zap.String("job", job.Name),
		zap.Duration("took", time.Since(started)),
	)
}
