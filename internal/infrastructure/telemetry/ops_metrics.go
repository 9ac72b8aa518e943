package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// OpsMetrics tracks the operational activity of the platform: invoice and
// shipment lifecycle transitions, proof decisions, sweep results, and the
// depth of the action queue.
type OpsMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	invoiceTransitionTotal  *Counter
	proofDecisionTotal      *Counter
	shipmentTransitionTotal *Counter
	sweepMarkedTotal        *Counter

	actionQueueDepth *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	queueProvider QueueDepthProvider
}

// QueueDepthProvider reports the current action queue depth per reason.
// The interface keeps the telemetry layer from depending on the action
// queue domain directly.
type QueueDepthProvider interface {
	GetQueueDepthByReason(ctx context.Context) (map[string]int64, error)
}

// OpsMetricsConfig holds configuration for operations metrics.
type OpsMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	QueueProvider   QueueDepthProvider
}

// NewOpsMetrics creates a new OpsMetrics instance.
func NewOpsMetrics(cfg OpsMetricsConfig) (*OpsMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	om := &OpsMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		queueProvider: cfg.QueueProvider,
	}

	var err error

	om.invoiceTransitionTotal, err = NewCounter(
		cfg.Meter,
		"packops_invoice_transition_total",
		"Total number of invoice status transitions",
		"{transitions}",
	)
	if err != nil {
		return nil, err
	}

	om.proofDecisionTotal, err = NewCounter(
		cfg.Meter,
		"packops_proof_decision_total",
		"Total number of proof approval decisions",
		"{decisions}",
	)
	if err != nil {
		return nil, err
	}

	om.shipmentTransitionTotal, err = NewCounter(
		cfg.Meter,
		"packops_shipment_transition_total",
		"Total number of shipment status transitions",
		"{transitions}",
	)
	if err != nil {
		return nil, err
	}

	om.sweepMarkedTotal, err = NewCounter(
		cfg.Meter,
		"packops_sweep_marked_total",
		"Total number of invoices handled by the overdue sweep",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	om.actionQueueDepth, err = NewGauge(
		cfg.Meter,
		"packops_action_queue_depth",
		"Current number of entries in the action queue",
		"{entries}",
	)
	if err != nil {
		return nil, err
	}

	return om, nil
}

// RecordInvoiceTransition records one invoice status transition.
func (om *OpsMetrics) RecordInvoiceTransition(ctx context.Context, orgID uuid.UUID, transition, toStatus string) {
	om.invoiceTransitionTotal.Inc(ctx,
		AttrOrganizationID.String(orgID.String()),
		AttrTransitionKind.String(transition),
		AttrInvoiceStatus.String(toStatus),
	)
}

// RecordProofDecision records one proof approval decision.
func (om *OpsMetrics) RecordProofDecision(ctx context.Context, orgID uuid.UUID, toStatus string) {
	om.proofDecisionTotal.Inc(ctx,
		AttrOrganizationID.String(orgID.String()),
		AttrApprovalStatus.String(toStatus),
	)
}

// RecordShipmentTransition records one shipment status transition.
func (om *OpsMetrics) RecordShipmentTransition(ctx context.Context, orgID uuid.UUID, toStatus string) {
	om.shipmentTransitionTotal.Inc(ctx,
		AttrOrganizationID.String(orgID.String()),
		AttrShipmentStatus.String(toStatus),
	)
}

// RecordSweepResult records the outcome counts of one overdue sweep run.
func (om *OpsMetrics) RecordSweepResult(ctx context.Context, marked, failed int) {
	if marked > 0 {
		om.sweepMarkedTotal.Add(ctx, int64(marked), AttrSweepOutcome.String("marked"))
	}
	if failed > 0 {
		om.sweepMarkedTotal.Add(ctx, int64(failed), AttrSweepOutcome.String("failed"))
	}
}

// RecordQueueDepth records the current action queue depth for one reason.
func (om *OpsMetrics) RecordQueueDepth(ctx context.Context, reason string, depth int64) {
	om.actionQueueDepth.Record(ctx, depth,
		AttrActionReason.String(reason),
	)
}

// StartPeriodicCollection starts periodic collection of the queue depth gauge.
// It is non-blocking; use Stop() to stop collection.
func (om *OpsMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	om.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go om.runPeriodicCollection(ctx, interval)
	})
}

func (om *OpsMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	om.collectQueueDepth(ctx)

	for {
		select {
		case <-om.stopChan:
			om.logger.Info("Stopping periodic operations metrics collection")
			return
		case <-ctx.Done():
			om.logger.Info("Context cancelled, stopping periodic operations metrics collection")
			return
		case <-ticker.C:
			om.collectQueueDepth(ctx)
		}
	}
}

func (om *OpsMetrics) collectQueueDepth(ctx context.Context) {
	if om.queueProvider == nil {
		om.logger.Debug("No queue depth provider configured, skipping collection")
		return
	}

	depths, err := om.queueProvider.GetQueueDepthByReason(ctx)
	if err != nil {
		om.logger.Error("Failed to collect action queue depth", zap.Error(err))
		return
	}

	for reason, depth := range depths {
		om.RecordQueueDepth(ctx, reason, depth)
	}
}

// Stop stops the periodic collection.
func (om *OpsMetrics) Stop() {
	om.stopOnce.Do(func() {
		close(om.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewOpsMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
