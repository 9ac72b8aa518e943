package persistence

import (
	"context"

	"github.com/packops/backend/internal/domain/proofing"
	"github.com/packops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormApprovalEventRepository implements proofing.ApprovalEventRepository
// using GORM. Insert-only.
type GormApprovalEventRepository struct {
	db *gorm.DB
}

// NewGormApprovalEventRepository creates a new GormApprovalEventRepository
func NewGormApprovalEventRepository(db *gorm.DB) *GormApprovalEventRepository {
	return &GormApprovalEventRepository{db: db}
}

// Append inserts one audit row
func (r *GormApprovalEventRepository) Append(ctx context.Context, event *proofing.ApprovalEvent) error {
	var model models.ApprovalEventModel
	if err := model.FromDomain(event); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByAsset returns the audit rows of one asset, oldest first
func (r *GormApprovalEventRepository) FindByAsset(ctx context.Context, assetID uuid.UUID) ([]proofing.ApprovalEvent, error) {
	var modelList []models.ApprovalEventModel
	if err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("occurred_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	events := make([]proofing.ApprovalEvent, 0, len(modelList))
	for i := range modelList {
		e, err := modelList[i].ToDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, nil
}
