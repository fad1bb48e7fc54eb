package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning rejects submissions to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull rejects submissions when the queue is at capacity
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrInvalidReportType marks a job whose report type no executor
	// branch knows
	ErrInvalidReportType = errors.New("invalid report type")
)
