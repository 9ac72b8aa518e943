package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TriggerConfig holds configuration for the sweep trigger
type TriggerConfig struct {
	// OverdueSweepSchedule is a standard five-field cron expression
	OverdueSweepSchedule string
	// DeliveryCheckInterval is how often in-flight shipments are re-checked
	DeliveryCheckInterval time.Duration
}

// DefaultTriggerConfig returns default trigger configuration
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		OverdueSweepSchedule:  "0 2 * * *",
		DeliveryCheckInterval: time.Hour,
	}
}

// Trigger submits sweep jobs on schedule. The overdue sweep follows a cron
// expression; the delivery check runs on a fixed interval.
type Trigger struct {
	schedule  cron.Schedule
	interval  time.Duration
	scheduler *Scheduler
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewTrigger creates a new sweep trigger
func NewTrigger(config TriggerConfig, scheduler *Scheduler, logger *zap.Logger) (*Trigger, error) {
	expr := config.OverdueSweepSchedule
	if expr == "" {
		expr = DefaultTriggerConfig().OverdueSweepSchedule
	}
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, expr, err)
	}

	interval := config.DeliveryCheckInterval
	if interval <= 0 {
		interval = DefaultTriggerConfig().DeliveryCheckInterval
	}

	return &Trigger{
		schedule:  schedule,
		interval:  interval,
		scheduler: scheduler,
		logger:    logger,
	}, nil
}

// Start starts the trigger
func (t *Trigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Sweep trigger started",
		zap.Time("next_overdue_sweep", t.schedule.Next(time.Now())),
		zap.Duration("delivery_check_interval", t.interval),
	)

	return nil
}

// Stop stops the trigger
func (t *Trigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Sweep trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop waits for the next cron fire and the delivery check interval
func (t *Trigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	sweepTimer := time.NewTimer(time.Until(t.schedule.Next(time.Now())))
	defer sweepTimer.Stop()

	checkTicker := time.NewTicker(t.interval)
	defer checkTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweepTimer.C:
			t.submit(JobTypeOverdueSweep)
			sweepTimer.Reset(time.Until(t.schedule.Next(time.Now())))
		case <-checkTicker.C:
			t.submit(JobTypeDeliveryCheck)
		}
	}
}

func (t *Trigger) submit(jobType JobType) {
	if err := t.scheduler.Schedule(jobType); err != nil {
		t.logger.Error("Failed to submit scheduled job",
			zap.String("job_type", string(jobType)),
			zap.Error(err),
		)
	}
}

// TriggerNow submits a job immediately, outside the schedule
func (t *Trigger) TriggerNow(jobType JobType) error {
	return t.scheduler.Schedule(jobType)
}
