package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning rejects submissions before Start or after Stop
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull means SubmitJob would have blocked
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrInvalidConfig flags an unparseable cron schedule
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
