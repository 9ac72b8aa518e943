package persistence

import (
	"context"

	"github.com/packops/backend/internal/domain/billing"
	"github.com/packops/backend/internal/infrastructure/persistence/models"
	"github.com/packops/backend/internal/infrastructure/persistence/orgscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceEventRepository implements billing.InvoiceEventRepository using
// GORM. The table is append-only: the repository exposes no update or delete.
type GormInvoiceEventRepository struct {
	db *gorm.DB
}

// NewGormInvoiceEventRepository creates a new GormInvoiceEventRepository
func NewGormInvoiceEventRepository(db *gorm.DB) *GormInvoiceEventRepository {
	return &GormInvoiceEventRepository{db: db}
}

// Append inserts one audit row
func (r *GormInvoiceEventRepository) Append(ctx context.Context, event *billing.InvoiceEvent) error {
	var model models.InvoiceEventModel
	if err := model.FromDomain(event); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByInvoice returns the audit rows of one invoice, oldest first
func (r *GormInvoiceEventRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.InvoiceEvent, error) {
	var modelList []models.InvoiceEventModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("occurred_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainInvoiceEvents(modelList)
}

// FindByInvoiceForOrg returns the audit rows of one invoice within an organization
func (r *GormInvoiceEventRepository) FindByInvoiceForOrg(ctx context.Context, orgID, invoiceID uuid.UUID) ([]billing.InvoiceEvent, error) {
	var modelList []models.InvoiceEventModel
	if err := r.db.WithContext(ctx).
		Scopes(orgscope.Scope(orgID)).
		Where("invoice_id = ?", invoiceID).
		Order("occurred_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainInvoiceEvents(modelList)
}

func toDomainInvoiceEvents(modelList []models.InvoiceEventModel) ([]billing.InvoiceEvent, error) {
	events := make([]billing.InvoiceEvent, 0, len(modelList))
	for i := range modelList {
		e, err := modelList[i].ToDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, nil
}
