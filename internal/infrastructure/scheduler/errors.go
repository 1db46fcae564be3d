package scheduler

import "errors"

var (
	// ErrNotRunning is returned when submitting a job to a stopped scheduler
	ErrNotRunning = errors.New("scheduler is not running")

	// ErrQueueFull is returned when the job queue cannot accept more work
	ErrQueueFull = errors.New("job queue is full")
)
