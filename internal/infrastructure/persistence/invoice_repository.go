package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/packops/backend/internal/domain/billing"
	"github.com/packops/backend/internal/domain/shared"
	"github.com/packops/backend/internal/infrastructure/persistence/models"
	"github.com/packops/backend/internal/infrastructure/persistence/orgscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForOrg finds an invoice by ID within an organization
func (r *GormInvoiceRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
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

// FindByNumber finds an invoice by number within an organization
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, orgID uuid.UUID, invoiceNumber string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Scopes(orgscope.Scope(orgID)).
		First(&model, "invoice_number = ?", invoiceNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all invoices with filtering
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	return r.find(query, filter)
}

// FindAllForOrg finds an organization's invoices with filtering
func (r *GormInvoiceRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	query := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(orgscope.Scope(orgID))
	return r.find(query, filter)
}

// FindDueForSweep returns sent invoices past their due date with an
// outstanding balance, across all organizations
func (r *GormInvoiceRepository) FindDueForSweep(ctx context.Context, now time.Time) ([]billing.Invoice, error) {
	var modelList []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", billing.InvoiceStatusSent).
		Where("due_date IS NOT NULL AND due_date < ?", now).
		Where("paid < total").
		Order("due_date ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(modelList), nil
}

// Save creates or updates an invoice without a version check
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves using optimistic locking on the aggregate version
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveLocked(tx, inv)
	})
}

// SaveWithEvent saves the invoice and appends the audit event in one
// transaction, under the same optimistic lock as SaveWithLock. A nil event
// saves the invoice alone.
func (r *GormInvoiceRepository) SaveWithEvent(ctx context.Context, inv *billing.Invoice, event *billing.InvoiceEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveLocked(tx, inv); err != nil {
			return err
		}
		if event == nil {
			return nil
		}
		var eventModel models.InvoiceEventModel
		if err := eventModel.FromDomain(event); err != nil {
			return err
		}
		return tx.Create(&eventModel).Error
	})
}

// saveLocked updates an existing row with a version check, or inserts a new
// one. The domain transition already incremented the version; the WHERE
// clause matches the pre-transition value.
func (r *GormInvoiceRepository) saveLocked(tx *gorm.DB, inv *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)

	var exists bool
	if err := tx.Model(&models.InvoiceModel{}).
		Select("count(*) > 0").
		Where("id = ?", inv.ID).
		Find(&exists).Error; err != nil {
		return err
	}
	if !exists {
		return tx.Create(model).Error
	}

	result := tx.Model(&models.InvoiceModel{}).
		Where("id = ? AND version < ?", inv.ID, inv.Version).
		Updates(map[string]interface{}{
			"subtotal":         model.Subtotal,
			"tax":              model.Tax,
			"total":            model.Total,
			"paid":             model.Paid,
			"currency":         model.Currency,
			"deposit_required": model.DepositRequired,
			"deposit_amount":   model.DepositAmount,
			"deposit_paid":     model.DepositPaid,
			"deposit_paid_at":  model.DepositPaidAt,
			"status":           model.Status,
			"due_date":         model.DueDate,
			"sent_at":          model.SentAt,
			"paid_at":          model.PaidAt,
			"cancelled_at":     model.CancelledAt,
			"cancel_reason":    model.CancelReason,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes an invoice
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter billing.InvoiceFilter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	return r.count(query, filter)
}

// CountForOrg counts an organization's invoices matching the filter
func (r *GormInvoiceRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter billing.InvoiceFilter) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Scopes(orgscope.Scope(orgID))
	return r.count(query, filter)
}

func (r *GormInvoiceRepository) find(query *gorm.DB, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	query = r.applyFilter(query, filter)
	query = applyPagination(query, filter.Filter, InvoiceSortFields)

	var modelList []models.InvoiceModel
	if err := query.Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(modelList), nil
}

func (r *GormInvoiceRepository) count(query *gorm.DB, filter billing.InvoiceFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("invoice_number ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ExcludeDrafts {
		query = query.Where("status <> ?", billing.InvoiceStatusDraft)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date < ?", *filter.DueBefore)
	}
	if filter.DueAfter != nil {
		query = query.Where("due_date > ?", *filter.DueAfter)
	}
	if filter.UnpaidDeposits {
		query = query.Where("deposit_required AND NOT deposit_paid")
	}
	return query
}

func toDomainInvoices(modelList []models.InvoiceModel) []billing.Invoice {
	invoices := make([]billing.Invoice, 0, len(modelList))
	for i := range modelList {
		invoices = append(invoices, *modelList[i].ToDomain())
	}
	return invoices
}
