package telemetry_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/packops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestNewOpsMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	om, err := telemetry.NewOpsMetrics(telemetry.OpsMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, om)
}

func TestNewOpsMetrics_NilMeter(t *testing.T) {
	om, err := telemetry.NewOpsMetrics(telemetry.OpsMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, om)
	assert.Equal(t, "NewOpsMetrics: meter cannot be nil", err.Error())
}

func TestOpsMetrics_RecordingDoesNotPanic(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	om, err := telemetry.NewOpsMetrics(telemetry.OpsMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	ctx := context.Background()
	orgID := uuid.New()

	om.RecordInvoiceTransition(ctx, orgID, "send", "sent")
	om.RecordProofDecision(ctx, orgID, "approved")
	om.RecordShipmentTransition(ctx, orgID, "in_transit")
	om.RecordSweepResult(ctx, 3, 1)
	om.RecordSweepResult(ctx, 0, 0)
	om.RecordQueueDepth(ctx, "invoice_overdue", 7)
}

type stubQueueProvider struct {
	mu     sync.Mutex
	calls  int
	depths map[string]int64
	err    error
}

func (p *stubQueueProvider) GetQueueDepthByReason(_ context.Context) (map[string]int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.depths, p.err
}

func (p *stubQueueProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestOpsMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	provider := &stubQueueProvider{
		depths: map[string]int64{"proof_pending": 4, "invoice_overdue": 2},
	}

	om, err := telemetry.NewOpsMetrics(telemetry.OpsMetricsConfig{
		Meter:         meter,
		Logger:        zap.NewNop(),
		QueueProvider: provider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	om.StartPeriodicCollection(ctx, 10*time.Millisecond)
	defer om.Stop()

	assert.Eventually(t, func() bool {
		return provider.callCount() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestOpsMetrics_PeriodicCollectionProviderError(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	provider := &stubQueueProvider{err: errors.New("queue unavailable")}

	om, err := telemetry.NewOpsMetrics(telemetry.OpsMetricsConfig{
		Meter:         meter,
		Logger:        zap.NewNop(),
		QueueProvider: provider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Collection keeps running even when the provider fails
	om.StartPeriodicCollection(ctx, 10*time.Millisecond)
	defer om.Stop()

	assert.Eventually(t, func() bool {
		return provider.callCount() >= 2
	}, time.Second, 5*time.Millisecond)
}
