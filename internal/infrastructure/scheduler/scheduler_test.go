package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingExecutor records executed jobs and can fail a configurable number
// of times per job type.
type recordingExecutor struct {
	mu        sync.Mutex
	executed  []JobType
	failures  map[JobType]int
	executedC chan JobType
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{
		failures:  make(map[JobType]int),
		executedC: make(chan JobType, 100),
	}
}

func (e *recordingExecutor) Execute(_ context.Context, job *Job) error {
	e.mu.Lock()
	e.executed = append(e.executed, job.Type)
	remaining := e.failures[job.Type]
	if remaining > 0 {
		e.failures[job.Type] = remaining - 1
	}
	e.mu.Unlock()

	e.executedC <- job.Type
	if remaining > 0 {
		return errors.New("sweep blew up")
	}
	return nil
}

func (e *recordingExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.executed)
}

func waitForExecution(t *testing.T, exec *recordingExecutor, want JobType) {
	t.Helper()
	select {
	case got := <-exec.executedC:
		assert.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s execution", want)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 2, cfg.MaxConcurrentJobs)
	assert.Equal(t, 10*time.Minute, cfg.JobTimeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 5*time.Minute, cfg.RetryDelay)
}

func TestScheduler_ExecutesSubmittedJobs(t *testing.T) {
	exec := newRecordingExecutor()
	s := NewScheduler(DefaultConfig(), exec, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	require.NoError(t, s.Schedule(JobTypeOverdueSweep))
	waitForExecution(t, exec, JobTypeOverdueSweep)

	require.NoError(t, s.Schedule(JobTypeDeliveryCheck))
	waitForExecution(t, exec, JobTypeDeliveryCheck)
}

func TestScheduler_RejectsWhenStopped(t *testing.T) {
	s := NewScheduler(DefaultConfig(), newRecordingExecutor(), zap.NewNop())

	err := s.Schedule(JobTypeOverdueSweep)
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestScheduler_RetriesFailedJobs(t *testing.T) {
	exec := newRecordingExecutor()
	exec.failures[JobTypeOverdueSweep] = 1

	cfg := DefaultConfig()
	cfg.RetryDelay = 0

	s := NewScheduler(cfg, exec, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	require.NoError(t, s.Schedule(JobTypeOverdueSweep))

	// First attempt fails, the retry succeeds
	waitForExecution(t, exec, JobTypeOverdueSweep)
	waitForExecution(t, exec, JobTypeOverdueSweep)
	assert.Equal(t, 2, exec.count())
}

func TestJob_RetryBookkeeping(t *testing.T) {
	job := NewJob(JobTypeDeliveryCheck, 2)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)

	job.Fail("boom")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Minute)
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, JobStatusPending, job.Status)
	require.NotNil(t, job.NextRetryAt)

	job.Fail("boom again")
	job.ScheduleRetry(time.Minute)
	job.Fail("boom a third time")
	assert.False(t, job.ShouldRetry())
}

func TestNewTrigger_ParsesSchedule(t *testing.T) {
	s := NewScheduler(DefaultConfig(), newRecordingExecutor(), zap.NewNop())

	tests := []struct {
		name      string
		schedule  string
		expectErr bool
	}{
		{name: "daily at 2am", schedule: "0 2 * * *"},
		{name: "every 15 minutes", schedule: "*/15 * * * *"},
		{name: "empty falls back to default", schedule: ""},
		{name: "garbage", schedule: "not a cron line", expectErr: true},
		{name: "too many fields", schedule: "0 0 0 2 * * *", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger, err := NewTrigger(TriggerConfig{
				OverdueSweepSchedule:  tt.schedule,
				DeliveryCheckInterval: time.Hour,
			}, s, zap.NewNop())

			if tt.expectErr {
				assert.ErrorIs(t, err, ErrInvalidSchedule)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, trigger)
		})
	}
}

func TestTrigger_TriggerNow(t *testing.T) {
	exec := newRecordingExecutor()
	s := NewScheduler(DefaultConfig(), exec, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	}()

	trigger, err := NewTrigger(DefaultTriggerConfig(), s, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, trigger.TriggerNow(JobTypeDeliveryCheck))
	waitForExecution(t, exec, JobTypeDeliveryCheck)
}
