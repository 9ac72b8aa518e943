package actionqueue

import (
	"context"
	"time"

	"github.com/packops/backend/internal/domain/actionqueue"
	"github.com/packops/backend/internal/domain/authz"
	"github.com/packops/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// Service assembles the ranked action queue. The queue itself is a pure
// function of entity state; this service only loads the snapshot with the
// caller's visibility and delegates ranking to the domain.
type Service struct {
	snapshots actionqueue.SnapshotRepository
	evaluator *authz.Evaluator
	logger    *zap.Logger
}

// NewService creates a new action queue service
func NewService(
	snapshots actionqueue.SnapshotRepository,
	evaluator *authz.Evaluator,
	logger *zap.Logger,
) *Service {
	return &Service{
		snapshots: snapshots,
		evaluator: evaluator,
		logger:    logger,
	}
}

// GetQueue returns the ranked action queue for the caller. Internal callers
// see every organization; customers see only their own records, with drafts
// excluded the same way the read path excludes them. The snapshot is loaded
// in one transaction so the ranking never mixes entity states from different
// points in time.
func (s *Service) GetQueue(ctx context.Context, caller identity.PrincipalContext) ([]actionqueue.ActionItem, error) {
	if err := s.evaluator.Evaluate(caller, authz.OpRead, authz.RecordRef{
		Kind:           authz.KindInvoice,
		OrganizationID: caller.OrganizationID,
	}); err != nil {
		return nil, err
	}

	var (
		snap actionqueue.Snapshot
		err  error
	)
	if caller.IsInternal() || caller.IsSystem() {
		snap, err = s.snapshots.LoadAll(ctx)
	} else {
		snap, err = s.snapshots.LoadForOrg(ctx, caller.OrganizationID)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	items := actionqueue.Build(snap, now)

	s.logger.Debug("Action queue built",
		zap.Int("invoices", len(snap.Invoices)),
		zap.Int("proofs", len(snap.Proofs)),
		zap.Int("shipments", len(snap.Shipments)),
		zap.Int("items", len(items)))

	return items, nil
}

// GetQueueDepthByReason counts queue items grouped by action type across
// all organizations. Used by the metrics collector.
func (s *Service) GetQueueDepthByReason(ctx context.Context) (map[string]int64, error) {
	items, err := s.GetQueue(ctx, identity.SystemPrincipal())
	if err != nil {
		return nil, err
	}

	depths := make(map[string]int64)
	for _, item := range items {
		depths[string(item.Type)]++
	}
	return depths, nil
}
