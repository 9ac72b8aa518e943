package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a job to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrInvalidSchedule is returned when the sweep cron expression cannot be parsed
	ErrInvalidSchedule = errors.New("invalid sweep schedule")

	// ErrUnknownJobType is returned for job types the executor does not handle
	ErrUnknownJobType = errors.New("unknown job type")
)
