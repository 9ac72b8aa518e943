package billing

import (
	"time"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/packops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	ProjectID     uuid.UUID `json:"project_id"`
	Total         int64     `json:"total"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", "Invoice", inv.ID, inv.OrganizationID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		ProjectID:       inv.ProjectID,
		Total:           inv.Total.Amount(),
	}
}

// InvoiceSentEvent is raised when a draft invoice is issued
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID  `json:"invoice_id"`
	InvoiceNumber string     `json:"invoice_number"`
	DueDate       *time.Time `json:"due_date,omitempty"`
}

// EventType returns the event type name
func (e *InvoiceSentEvent) EventType() string {
	return "InvoiceSent"
}

// NewInvoiceSentEvent creates a new InvoiceSentEvent
func NewInvoiceSentEvent(inv *Invoice) *InvoiceSentEvent {
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceSent", "Invoice", inv.ID, inv.OrganizationID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		DueDate:         inv.DueDate,
	}
}

// InvoiceMarkedOverdueEvent is raised when the overdue sweep flips a sent invoice
type InvoiceMarkedOverdueEvent struct {
	shared.BaseDomainEvent
	InvoiceID  uuid.UUID `json:"invoice_id"`
	BalanceDue int64     `json:"balance_due"`
}

// EventType returns the event type name
func (e *InvoiceMarkedOverdueEvent) EventType() string {
	return "InvoiceMarkedOverdue"
}

// NewInvoiceMarkedOverdueEvent creates a new InvoiceMarkedOverdueEvent
func NewInvoiceMarkedOverdueEvent(inv *Invoice) *InvoiceMarkedOverdueEvent {
	return &InvoiceMarkedOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceMarkedOverdue", "Invoice", inv.ID, inv.OrganizationID),
		InvoiceID:       inv.ID,
		BalanceDue:      inv.BalanceDue().Amount(),
	}
}

// InvoicePaymentReceivedEvent is raised when a payment is recorded
type InvoicePaymentReceivedEvent struct {
	shared.BaseDomainEvent
	InvoiceID  uuid.UUID `json:"invoice_id"`
	Amount     int64     `json:"amount"`
	Paid       int64     `json:"paid"`
	BalanceDue int64     `json:"balance_due"`
}

// EventType returns the event type name
func (e *InvoicePaymentReceivedEvent) EventType() string {
	return "InvoicePaymentReceived"
}

// NewInvoicePaymentReceivedEvent creates a new InvoicePaymentReceivedEvent
func NewInvoicePaymentReceivedEvent(inv *Invoice, amount valueobject.Money) *InvoicePaymentReceivedEvent {
	return &InvoicePaymentReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaymentReceived", "Invoice", inv.ID, inv.OrganizationID),
		InvoiceID:       inv.ID,
		Amount:          amount.Amount(),
		Paid:            inv.Paid.Amount(),
		BalanceDue:      inv.Total.Amount() - inv.Paid.Amount(),
	}
}

// InvoiceDepositPaidEvent is raised when the required deposit is paid
type InvoiceDepositPaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	DepositAmount int64     `json:"deposit_amount"`
}

// EventType returns the event type name
func (e *InvoiceDepositPaidEvent) EventType() string {
	return "InvoiceDepositPaid"
}

// NewInvoiceDepositPaidEvent creates a new InvoiceDepositPaidEvent
func NewInvoiceDepositPaidEvent(inv *Invoice) *InvoiceDepositPaidEvent {
	var deposit int64
	if inv.DepositAmount != nil {
		deposit = inv.DepositAmount.Amount()
	}
	return &InvoiceDepositPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceDepositPaid", "Invoice", inv.ID, inv.OrganizationID),
		InvoiceID:       inv.ID,
		DepositAmount:   deposit,
	}
}

// InvoiceCancelledEvent is raised when an invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID `json:"invoice_id"`
	Reason    string    `json:"reason"`
}

// EventType returns the event type name
func (e *InvoiceCancelledEvent) EventType() string {
	return "InvoiceCancelled"
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCancelled", "Invoice", inv.ID, inv.OrganizationID),
		InvoiceID:       inv.ID,
		Reason:          inv.CancelReason,
	}
}
