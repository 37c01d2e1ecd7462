// Package scheduler runs the background projection refresh jobs: a
// bounded worker pool fed by a cron loop that enqueues one job per
// company and refresh window.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const jobQueueSize = 100

// SchedulerConfig sizes the worker pool and the retry policy.
type SchedulerConfig struct {
	Enabled           bool
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:           true,
		MaxConcurrentJobs: 3,
		JobTimeout:        30 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
	}
}

// Scheduler fans submitted jobs out to a fixed pool of workers. Failed
// jobs are re-queued until their retry budget runs out.
type Scheduler struct {
	config   SchedulerConfig
	executor JobExecutor
	logger   *zap.Logger

	jobs    chan *Job
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
}

func NewScheduler(config SchedulerConfig, executor JobExecutor, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		jobs:     make(chan *Job, jobQueueSize),
	}
}

// Start launches the worker pool. Starting an already-running
// scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(s.config.MaxConcurrentJobs)
	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		go s.worker(ctx, i)
	}

	s.logger.Info("projection refresh scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop drains the pool, waiting for in-flight jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	s.cancel()
	close(s.jobs)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("projection refresh scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("projection refresh scheduler stop timed out")
		return ctx.Err()
	}
}

// SubmitJob enqueues a job without blocking; a full queue is an error
// the caller can surface rather than silently delayed work.
func (s *Scheduler) SubmitJob(job *Job) error {
	if !s.running.Load() {
		return ErrSchedulerNotRunning
	}

	select {
	case s.jobs <- job:
		s.logger.Debug("refresh job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("company_id", job.CompanyID.String()),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for job := range s.jobs {
		if ctx.Err() != nil {
			return
		}
		s.runJob(ctx, job, workerID)
	}
}

func (s *Scheduler) runJob(ctx context.Context, job *Job, workerID int) {
	// a retried job that is not due yet goes back on the queue
	if job.NextRetryAt != nil && time.Until(*job.NextRetryAt) > 0 {
		s.requeue(job)
		return
	}

	job.Start()
	s.logger.Info("refresh job running",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("company_id", job.CompanyID.String()),
	)

	err := s.execute(ctx, job)
	if err == nil {
		job.Complete()
		s.logger.Info("refresh job completed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("company_id", job.CompanyID.String()),
		)
		return
	}

	job.Fail(err.Error())
	s.logger.Error("refresh job failed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("company_id", job.CompanyID.String()),
		zap.Error(err),
	)

	if job.ShouldRetry() {
		job.ScheduleRetry(s.config.RetryDelay)
		s.logger.Info("refresh job scheduled for retry",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
		)
		s.requeue(job)
	}
}

func (s *Scheduler) execute(ctx context.Context, job *Job) error {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()
	return s.executor.Execute(jobCtx, job)
}

func (s *Scheduler) requeue(job *Job) {
	select {
	case s.jobs <- job:
	default:
		s.logger.Warn("refresh job dropped, queue full",
			zap.String("job_id", job.ID.String()),
		)
	}
}
