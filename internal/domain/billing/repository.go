package billing

import (
	"context"
	"time"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	ProjectID      *uuid.UUID
	Status         *InvoiceStatus
	ExcludeDrafts  bool // Applied for customer-role callers
	DueBefore      *time.Time
	DueAfter       *time.Time
	UnpaidDeposits bool
}

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, orgID uuid.UUID, invoiceNumber string) (*Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)
	// FindDueForSweep returns sent invoices whose due date has passed with an
	// outstanding balance, across all organizations. Used by the system sweep.
	FindDueForSweep(ctx context.Context, now time.Time) ([]Invoice, error)
	Save(ctx context.Context, inv *Invoice) error
	// SaveWithLock saves using optimistic locking on the aggregate version
	SaveWithLock(ctx context.Context, inv *Invoice) error
	// SaveWithEvent saves the invoice and appends the audit event in one
	// transaction, under the same optimistic lock as SaveWithLock. A nil
	// event saves the invoice alone.
	SaveWithEvent(ctx context.Context, inv *Invoice, event *InvoiceEvent) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter InvoiceFilter) (int64, error)
}
