// Package scheduler runs sync jobs on a bounded worker pool and sweeps
// active shops onto it on a fixed cadence.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	appsync "github.com/ecomdash/backend/internal/application/sync"
	"github.com/ecomdash/backend/internal/domain/shared"
)

// Executor runs one sync job to completion
type Executor interface {
	Execute(ctx context.Context, job appsync.Job) (*appsync.RunResult, error)
}

// Config holds scheduler configuration
type Config struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
	MaxRetries int
	RetryDelay time.Duration
	// MaxRetryDelay caps the exponential backoff between attempts
	MaxRetryDelay time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Workers:       3,
		QueueSize:     100,
		JobTimeout:    30 * time.Minute,
		MaxRetries:    3,
		RetryDelay:    30 * time.Second,
		MaxRetryDelay: 10 * time.Minute,
	}
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.Workers < 1 {
		c.Workers = d.Workers
	}
	if c.QueueSize < 1 {
		c.QueueSize = d.QueueSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = d.JobTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.MaxRetryDelay < c.RetryDelay {
		c.MaxRetryDelay = d.MaxRetryDelay
	}
}

type queuedJob struct {
	job     appsync.Job
	attempt int
}

// Scheduler executes sync jobs on a fixed worker pool. It implements the
// job queue the sync service submits to.
type Scheduler struct {
	config   Config
	executor Executor
	logger   *zap.Logger

	jobs      chan queuedJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	timers    sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a scheduler. Start must be called before Submit
// accepts work.
func NewScheduler(config Config, executor Executor, logger *zap.Logger) *Scheduler {
	config.normalize()
	return &Scheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		jobs:     make(chan queuedJob, config.QueueSize),
	}
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Sync scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)

	return nil
}

// Stop drains the workers. Jobs already picked up finish within their
// timeout; queued jobs are dropped.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.timers.Wait()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// Submit enqueues a sync job. Implements the sync service's JobQueue.
func (s *Scheduler) Submit(job appsync.Job) error {
	return s.enqueue(queuedJob{job: job})
}

func (s *Scheduler) enqueue(qj queuedJob) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.mu.Unlock()

	select {
	case s.jobs <- qj:
		s.logger.Debug("Sync job submitted",
			zap.String("shop_id", qj.job.ShopID.String()),
			zap.String("resource", qj.job.Resource.String()),
			zap.Int("attempt", qj.attempt),
		)
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case qj := <-s.jobs:
			s.process(ctx, qj, workerID)
		}
	}
}

func (s *Scheduler) process(ctx context.Context, qj queuedJob, workerID int) {
	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	result, err := s.executor.Execute(jobCtx, qj.job)
	if err == nil {
		s.logger.Info("Sync job completed",
			zap.Int("worker_id", workerID),
			zap.String("shop_id", qj.job.ShopID.String()),
			zap.String("resource", qj.job.Resource.String()),
			zap.Int("pages", result.Pages),
			zap.Int("records", result.Records),
		)
		return
	}

	s.logger.Error("Sync job failed",
		zap.Int("worker_id", workerID),
		zap.String("shop_id", qj.job.ShopID.String()),
		zap.String("resource", qj.job.Resource.String()),
		zap.Int("attempt", qj.attempt),
		zap.Error(err),
	)

	if !s.shouldRetry(err) || qj.attempt >= s.config.MaxRetries {
		return
	}

	delay := s.backoff(qj.attempt)
	next := queuedJob{job: qj.job, attempt: qj.attempt + 1}

	s.timers.Add(1)
	timer := time.AfterFunc(delay, func() {
		defer s.timers.Done()
		if err := s.enqueue(next); err != nil {
			s.logger.Warn("Failed to re-queue sync job",
				zap.String("shop_id", next.job.ShopID.String()),
				zap.Error(err),
			)
		}
	})

	// Stop the timer if the scheduler shuts down first.
	go func() {
		<-ctx.Done()
		if timer.Stop() {
			s.timers.Done()
		}
	}()
}

// shouldRetry reports whether another attempt can change the outcome.
// A revoked credential needs the merchant, a held pair will be swept again,
// and cancellation means shutdown.
func (s *Scheduler) shouldRetry(err error) bool {
	switch {
	case errors.Is(err, shared.ErrSyncInProgress),
		errors.Is(err, shared.ErrCredentialRevoked),
		errors.Is(err, shared.ErrInvalidState),
		errors.Is(err, shared.ErrNotFound),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}

func (s *Scheduler) backoff(attempt int) time.Duration {
	delay := s.config.RetryDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= s.config.MaxRetryDelay {
			return s.config.MaxRetryDelay
		}
	}
	return delay
}
