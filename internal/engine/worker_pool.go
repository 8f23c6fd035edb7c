package engine

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/veritext/veritext/internal/models"
)

type Job interface {
	Execute(ctx context.Context) error
}

type WorkerPool struct {
	workers  int
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// creates a new worker pool with CPU-based sizing
func NewWorkerPool(ctx context.Context) *WorkerPool {
	totalCPU := runtime.NumCPU()
	systemReserve := max(1, totalCPU/4) // Reserve 1/4 of the CPU for system processes
	size := max(1, totalCPU-systemReserve)
	log.Info().
		Int("totalCPU", totalCPU).
		Int("systemReserve", systemReserve).
		Int("workers", size).
		Msg("Worker pool initialized")
	poolCtx, cancel := context.WithCancel(ctx)

	pool := &WorkerPool{
		workers:  size,
		jobQueue: make(chan Job, size*2), // Buffer 2x the worker count
		ctx:      poolCtx,
		cancel:   cancel,
	}

	pool.start()

	return pool
}

// starts all worker goroutines
func (p *WorkerPool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker goroutine that processes jobs
func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return // Channel closed
			}
			if err := job.Execute(p.ctx); err != nil {
				log.Error().Err(err).Msg("Worker failed to execute job")
			}
		}
	}
}

// submits a job to the pool
func (p *WorkerPool) Submit(job Job) error {
	// A closed pool must never accept jobs, even while the buffered
	// queue has room.
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	default:
	}

	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.jobQueue <- job:
		return nil
	}
}

// closes the worker pool and waits for all workers to finish.
// Cancellation happens before the queue closes so in-flight Submit
// calls fail instead of racing the close.
func (p *WorkerPool) Close() {
	p.cancel()
	close(p.jobQueue)
	p.wg.Wait()
}

// returns the number of workers
func (p *WorkerPool) Size() int {
	return p.workers
}

// CheckJob runs one plagiarism check through a composer, delivering
// the result (or the per-document error) on ResultChan.
type CheckJob struct {
	Composer   *Composer
	Submission models.Submission
	ResultChan chan<- CheckResult
}

// CheckResult carries a finished check or its per-document error.
type CheckResult struct {
	Check *models.PlagiarismCheck
	Err   error
}

// Execute runs the check. The error is also delivered on ResultChan,
// so the pool only logs it.
func (j *CheckJob) Execute(ctx context.Context) error {
	check, err := j.Composer.Check(ctx, j.Submission)
	result := CheckResult{Check: check, Err: err}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case j.ResultChan <- result:
		return err
	}
}
