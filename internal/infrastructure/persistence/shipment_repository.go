package persistence

import (
	"context"
	"errors"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/packops/backend/internal/domain/shipping"
	"github.com/packops/backend/internal/infrastructure/persistence/models"
	"github.com/packops/backend/internal/infrastructure/persistence/orgscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// inFlightStatuses are the states between shipped and delivered
var inFlightStatuses = []shipping.ShipmentStatus{
	shipping.ShipmentStatusShipped,
	shipping.ShipmentStatusInTransit,
	shipping.ShipmentStatusOutForDelivery,
}

// GormShipmentRepository implements shipping.ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// FindByID finds a shipment by its ID
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForOrg finds a shipment by ID within an organization
func (r *GormShipmentRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*shipping.Shipment, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Scopes(orgscope.Scope(orgID)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTrackingNumber finds a shipment by its tracking number
func (r *GormShipmentRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*shipping.Shipment, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).First(&model, "tracking_number = ?", trackingNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all shipments with filtering
func (r *GormShipmentRepository) FindAll(ctx context.Context, filter shipping.ShipmentFilter) ([]shipping.Shipment, error) {
	query := r.db.WithContext(ctx).Model(&models.ShipmentModel{})
	return r.find(query, filter)
}

// FindAllForOrg finds an organization's shipments with filtering
func (r *GormShipmentRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shipping.ShipmentFilter) ([]shipping.Shipment, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Scopes(orgscope.Scope(orgID))
	return r.find(query, filter)
}

// Save creates or updates a shipment without a version check
func (r *GormShipmentRepository) Save(ctx context.Context, s *shipping.Shipment) error {
	model := models.ShipmentModelFromDomain(s)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves using optimistic locking on the aggregate version
func (r *GormShipmentRepository) SaveWithLock(ctx context.Context, s *shipping.Shipment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveLocked(tx, s)
	})
}

// SaveWithEvent saves the shipment and appends the audit event in one
// transaction, under the same optimistic lock as SaveWithLock. A nil event
// saves the shipment alone.
func (r *GormShipmentRepository) SaveWithEvent(ctx context.Context, s *shipping.Shipment, event *shipping.ShipmentEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveLocked(tx, s); err != nil {
			return err
		}
		if event == nil {
			return nil
		}
		var eventModel models.ShipmentEventModel
		if err := eventModel.FromDomain(event); err != nil {
			return err
		}
		return tx.Create(&eventModel).Error
	})
}

func (r *GormShipmentRepository) saveLocked(tx *gorm.DB, s *shipping.Shipment) error {
	model := models.ShipmentModelFromDomain(s)

	var exists bool
	if err := tx.Model(&models.ShipmentModel{}).
		Select("count(*) > 0").
		Where("id = ?", s.ID).
		Find(&exists).Error; err != nil {
		return err
	}
	if !exists {
		return tx.Create(model).Error
	}

	result := tx.Model(&models.ShipmentModel{}).
		Where("id = ? AND version < ?", s.ID, s.Version).
		Updates(map[string]interface{}{
			"status":                 model.Status,
			"carrier":                model.Carrier,
			"tracking_number":        model.TrackingNumber,
			"expected_delivery_date": model.ExpectedDeliveryDate,
			"actual_ship_date":       model.ActualShipDate,
			"actual_delivery_date":   model.ActualDeliveryDate,
			"failure_reason":         model.FailureReason,
			"version":                model.Version,
			"updated_at":             model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a shipment
func (r *GormShipmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ShipmentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts shipments matching the filter
func (r *GormShipmentRepository) Count(ctx context.Context, filter shipping.ShipmentFilter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ShipmentModel{})
	return r.count(query, filter)
}

// CountForOrg counts an organization's shipments matching the filter
func (r *GormShipmentRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shipping.ShipmentFilter) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ShipmentModel{}).
		Scopes(orgscope.Scope(orgID))
	return r.count(query, filter)
}

func (r *GormShipmentRepository) find(query *gorm.DB, filter shipping.ShipmentFilter) ([]shipping.Shipment, error) {
	query = r.applyFilter(query, filter)
	query = applyPagination(query, filter.Filter, ShipmentSortFields)

	var modelList []models.ShipmentModel
	if err := query.Find(&modelList).Error; err != nil {
		return nil, err
	}
	shipments := make([]shipping.Shipment, 0, len(modelList))
	for i := range modelList {
		shipments = append(shipments, *modelList[i].ToDomain())
	}
	return shipments, nil
}

func (r *GormShipmentRepository) count(query *gorm.DB, filter shipping.ShipmentFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormShipmentRepository) applyFilter(query *gorm.DB, filter shipping.ShipmentFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("tracking_number ILIKE ? OR carrier ILIKE ?", pattern, pattern)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.InFlightOnly {
		query = query.Where("status IN ?", inFlightStatuses)
	}
	if filter.ExpectedBefore != nil {
		query = query.Where("expected_delivery_date < ?", *filter.ExpectedBefore)
	}
	if filter.MissingTracking {
		query = query.Where("tracking_number = '' AND actual_ship_date IS NOT NULL")
	}
	return query
}
