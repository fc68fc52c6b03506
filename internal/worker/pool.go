package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrStopped = errors.New("worker pool stopped")

// Job is a unit of remote work. Jobs with the same Shard run on the same
// worker, in submission order.
type Job struct {
	Shard int
	Name  string
	Run   func(ctx context.Context) error
}

type Pool struct {
	logger  *zap.Logger
	count   int
	timeout time.Duration
	queues  []chan Job
	wg      sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

func NewPool(logger *zap.Logger, count, queueSize int, timeout time.Duration) *Pool {
	if count <= 0 {
		count = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	queues := make([]chan Job, count)
	for i := range queues {
		queues[i] = make(chan Job, queueSize)
	}
	return &Pool{
		logger:  logger,
		count:   count,
		timeout: timeout,
		queues:  queues,
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("workers", p.count))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i, p.queues[i])
	}
}

// Stop closes the queues, lets workers drain what was already submitted and
// waits for them.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	for _, q := range p.queues {
		close(q)
	}
	p.mu.Unlock()

	p.logger.Info("Stopping worker pool...")
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

// Submit blocks while the shard's queue is full.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrStopped
	}
	p.queues[p.shard(job.Shard)] <- job
	return nil
}

func (p *Pool) shard(key int) int {
	if key < 0 {
		key = -key
	}
	return key % p.count
}

func (p *Pool) worker(ctx context.Context, id int, queue <-chan Job) {
	defer p.wg.Done()

	for job := range queue {
		p.run(ctx, id, job)
	}
}

func (p *Pool) run(ctx context.Context, workerID int, job Job) {
	jobCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job.Run(jobCtx); err != nil {
		p.logger.Debug("job failed",
			zap.Int("worker", workerID),
			zap.String("job", job.Name),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("job done",
		zap.Int("worker", workerID),
		zap.String("job", job.Name),
		zap.Duration("took", time.Since(start)),
	)
}
