package persistence

import (
	"context"

	"github.com/packops/backend/internal/domain/shipping"
	"github.com/packops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormShipmentEventRepository implements shipping.ShipmentEventRepository
// using GORM. Insert-only.
type GormShipmentEventRepository struct {
	db *gorm.DB
}

// NewGormShipmentEventRepository creates a new GormShipmentEventRepository
func NewGormShipmentEventRepository(db *gorm.DB) *GormShipmentEventRepository {
	return &GormShipmentEventRepository{db: db}
}

// Append inserts one audit row
func (r *GormShipmentEventRepository) Append(ctx context.Context, event *shipping.ShipmentEvent) error {
	var model models.ShipmentEventModel
	if err := model.FromDomain(event); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByShipment returns the audit rows of one shipment, oldest first
func (r *GormShipmentEventRepository) FindByShipment(ctx context.Context, shipmentID uuid.UUID) ([]shipping.ShipmentEvent, error) {
	var modelList []models.ShipmentEventModel
	if err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("occurred_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	events := make([]shipping.ShipmentEvent, 0, len(modelList))
	for i := range modelList {
		e, err := modelList[i].ToDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, nil
}
