package persistence

import (
	"context"
	"database/sql"

	"github.com/packops/backend/internal/domain/actionqueue"
	"github.com/packops/backend/internal/domain/billing"
	"github.com/packops/backend/internal/domain/proofing"
	"github.com/packops/backend/internal/domain/shipping"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormQueueSnapshotRepository implements actionqueue.SnapshotRepository. All
// three entity sets are read in one repeatable-read transaction, so the
// resulting Snapshot is a single point in time.
type GormQueueSnapshotRepository struct {
	db *gorm.DB
}

// NewGormQueueSnapshotRepository creates a new GormQueueSnapshotRepository
func NewGormQueueSnapshotRepository(db *gorm.DB) *GormQueueSnapshotRepository {
	return &GormQueueSnapshotRepository{db: db}
}

var snapshotTxOptions = &sql.TxOptions{Isolation: sql.LevelRepeatableRead}

// LoadAll reads every organization's contributing entities
func (r *GormQueueSnapshotRepository) LoadAll(ctx context.Context) (actionqueue.Snapshot, error) {
	var snap actionqueue.Snapshot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if snap.Invoices, err = NewGormInvoiceRepository(tx).FindAll(ctx, billing.InvoiceFilter{}); err != nil {
			return err
		}
		if snap.Proofs, err = NewGormFileAssetRepository(tx).FindAll(ctx, proofing.FileAssetFilter{CurrentOnly: true}); err != nil {
			return err
		}
		snap.Shipments, err = NewGormShipmentRepository(tx).FindAll(ctx, shipping.ShipmentFilter{})
		return err
	}, snapshotTxOptions)
	return snap, err
}

// LoadForOrg reads one organization's contributing entities, drafts excluded
func (r *GormQueueSnapshotRepository) LoadForOrg(ctx context.Context, orgID uuid.UUID) (actionqueue.Snapshot, error) {
	var snap actionqueue.Snapshot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if snap.Invoices, err = NewGormInvoiceRepository(tx).FindAllForOrg(ctx, orgID, billing.InvoiceFilter{ExcludeDrafts: true}); err != nil {
			return err
		}
		if snap.Proofs, err = NewGormFileAssetRepository(tx).FindAllForOrg(ctx, orgID, proofing.FileAssetFilter{CurrentOnly: true}); err != nil {
			return err
		}
		snap.Shipments, err = NewGormShipmentRepository(tx).FindAllForOrg(ctx, orgID, shipping.ShipmentFilter{})
		return err
	}, snapshotTxOptions)
	return snap, err
}
