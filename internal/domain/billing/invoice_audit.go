package billing

import (
	"context"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Audit event types recorded for invoices
const (
	AuditInvoiceCreated  = "created"
	AuditInvoiceSent     = "sent"
	AuditMarkedOverdue   = "marked_overdue"
	AuditPaymentReceived = "payment_received"
	AuditDepositPaid     = "deposit_paid"
	AuditInvoiceVoided   = "cancelled"
	AuditCorrected       = "corrected"
)

// InvoiceEvent is an append-only audit row for one invoice action
type InvoiceEvent struct {
	shared.AuditRecord
	InvoiceID uuid.UUID
}

// NewInvoiceEvent creates an invoice audit event attributed to a principal
func NewInvoiceEvent(inv *Invoice, eventType string, data map[string]any, principalID uuid.UUID) *InvoiceEvent {
	return &InvoiceEvent{
		AuditRecord: shared.NewAuditRecord(inv.OrganizationID, inv.ProjectID, eventType, data, principalID),
		InvoiceID:   inv.ID,
	}
}

// NewSystemInvoiceEvent creates an invoice audit event attributed to the system
func NewSystemInvoiceEvent(inv *Invoice, eventType string, data map[string]any) *InvoiceEvent {
	return &InvoiceEvent{
		AuditRecord: shared.NewSystemAuditRecord(inv.OrganizationID, inv.ProjectID, eventType, data),
		InvoiceID:   inv.ID,
	}
}

// InvoiceEventRepository persists invoice audit rows. The interface is
// insert-only: there is no update or delete through the ordinary path.
type InvoiceEventRepository interface {
	Append(ctx context.Context, event *InvoiceEvent) error
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]InvoiceEvent, error)
	FindByInvoiceForOrg(ctx context.Context, orgID, invoiceID uuid.UUID) ([]InvoiceEvent, error)
}
