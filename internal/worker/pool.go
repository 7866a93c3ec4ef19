package worker

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/flashdeck/internal/logger"
)

type Job interface {
	Run(context.Context) error
	Name() string
}

// Pool runs jobs on a fixed number of goroutines. Stop drains the queue
// before returning.
type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	workers int
	log     *logger.Logger

	mu     sync.Mutex
	failed int
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	log := logger.Default().WithPrefix("worker-pool")
	log.Debug("creating worker pool with %d workers and queue size %d", workers, queueSize)
	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		log:     log,
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.log.Info("starting worker pool with %d workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			workerLog := p.log.WithField("worker_id", id)
			workerLog.Debug("worker started")

			for job := range p.jobs {
				if ctx.Err() != nil {
					workerLog.Warn("skipping job %s: %v", job.Name(), ctx.Err())
					p.recordFailure()
					continue
				}

				jobLog := workerLog.WithField("job", job.Name())
				jobLog.Debug("starting job")
				start := time.Now()

				jobCtx := logger.NewContext(ctx, jobLog)

				if err := job.Run(jobCtx); err != nil {
					jobLog.Error("job failed after %v: %v", time.Since(start), err)
					p.recordFailure()
				} else {
					jobLog.Info("job completed in %v", time.Since(start))
				}
			}
			workerLog.Debug("worker shutting down (queue closed)")
		}(i + 1)
	}
}

// Stop closes the queue and waits for queued jobs to finish. It returns the
// number of jobs that failed or were skipped.
func (p *Pool) Stop() int {
	p.log.Info("stopping worker pool")
	close(p.jobs)
	p.wg.Wait()
	p.log.Info("worker pool stopped")

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failed
}

func (p *Pool) Submit(job Job) {
	p.log.Debug("submitting job: %s", job.Name())
	p.jobs <- job
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}

func (p *Pool) recordFailure() {
	p.mu.Lock()
	p.failed++
	p.mu.Unlock()
}
