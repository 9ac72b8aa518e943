package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/packops/backend/internal/application/billing"
	"github.com/packops/backend/internal/application/shipping"
	"github.com/packops/backend/internal/domain/identity"
)

// SweepExecutor runs the background sweeps as the system principal. Every
// change the sweeps make is attributed to the system in the audit trail.
type SweepExecutor struct {
	invoices  *billing.InvoiceService
	shipments *shipping.Service
	logger    *zap.Logger
}

// NewSweepExecutor creates a new sweep executor
func NewSweepExecutor(
	invoices *billing.InvoiceService,
	shipments *shipping.Service,
	logger *zap.Logger,
) *SweepExecutor {
	return &SweepExecutor{
		invoices:  invoices,
		shipments: shipments,
		logger:    logger,
	}
}

// Execute dispatches a job to the matching sweep
func (e *SweepExecutor) Execute(ctx context.Context, job *Job) error {
	caller := identity.SystemPrincipal()
	now := time.Now()

	switch job.Type {
	case JobTypeOverdueSweep:
		result, err := e.invoices.RunOverdueSweep(ctx, caller, now)
		if err != nil {
			return fmt.Errorf("overdue sweep: %w", err)
		}
		e.logger.Info("Overdue sweep finished",
			zap.String("job_id", job.ID.String()),
			zap.Int("examined", result.Examined),
			zap.Int("marked", result.Marked),
			zap.Int("failed", result.Failed),
		)
		return nil

	case JobTypeDeliveryCheck:
		result, err := e.shipments.RunDeliveryCheck(ctx, caller, now)
		if err != nil {
			return fmt.Errorf("delivery check: %w", err)
		}
		e.logger.Info("Delivery check finished",
			zap.String("job_id", job.ID.String()),
			zap.Int("examined", result.Examined),
			zap.Int("overdue", result.Overdue),
			zap.Int("at_risk", result.AtRisk),
			zap.Int("missing_tracking", result.MissingTracking),
		)
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobType, job.Type)
	}
}
