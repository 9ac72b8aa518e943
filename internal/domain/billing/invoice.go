package billing

import (
	"strings"
	"time"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/packops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"     // Not yet visible to the customer
	InvoiceStatusSent      InvoiceStatus = "sent"      // Issued, awaiting payment
	InvoiceStatusOverdue   InvoiceStatus = "overdue"   // Past due with outstanding balance
	InvoiceStatusPaid      InvoiceStatus = "paid"      // Fully paid
	InvoiceStatusCancelled InvoiceStatus = "cancelled" // Cancelled before payment
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue,
		InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// CanAcceptPayment returns true if payments may be recorded in this status
func (s InvoiceStatus) CanAcceptPayment() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusOverdue
}

// Invoice is an organization-scoped billing aggregate. All amounts are integer
// minor currency units; BalanceDue is always derived from Total and Paid and
// never stored independently.
type Invoice struct {
	shared.OrgAggregateRoot
	InvoiceNumber   string
	ProjectID       uuid.UUID
	Subtotal        valueobject.Money
	Tax             valueobject.Money
	Total           valueobject.Money
	Paid            valueobject.Money
	DepositRequired bool
	DepositAmount   *valueobject.Money
	DepositPaid     bool
	DepositPaidAt   *time.Time
	Status          InvoiceStatus
	DueDate         *time.Time
	SentAt          *time.Time
	PaidAt          *time.Time
	CancelledAt     *time.Time
	CancelReason    string
}

// NewInvoice creates a draft invoice for a project. Total is derived from
// subtotal plus tax; a required deposit must carry an amount.
func NewInvoice(
	orgID, projectID, createdBy uuid.UUID,
	invoiceNumber string,
	subtotal, tax valueobject.Money,
	depositRequired bool,
	depositAmount *valueobject.Money,
	dueDate *time.Time,
) (*Invoice, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project ID cannot be empty")
	}
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if subtotal.IsNegative() || tax.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Amounts cannot be negative")
	}
	total, err := subtotal.Add(tax)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}
	if depositRequired {
		if depositAmount == nil || !depositAmount.IsPositive() {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Deposit amount is required when a deposit is required")
		}
		if depositAmount.GreaterThan(total) {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Deposit amount cannot exceed invoice total")
		}
	} else if depositAmount != nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Deposit amount given but deposit not required")
	}

	inv := &Invoice{
		OrgAggregateRoot: shared.NewOrgAggregateRootWithCreator(orgID, createdBy),
		InvoiceNumber:    invoiceNumber,
		ProjectID:        projectID,
		Subtotal:         subtotal,
		Tax:              tax,
		Total:            total,
		Paid:             valueobject.NewMoney(0, total.Currency()),
		DepositRequired:  depositRequired,
		DepositAmount:    depositAmount,
		Status:           InvoiceStatusDraft,
		DueDate:          dueDate,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// BalanceDue returns the outstanding amount, always recomputed as total minus paid
func (i *Invoice) BalanceDue() valueobject.Money {
	return valueobject.NewMoney(i.Total.Amount()-i.Paid.Amount(), i.Total.Currency())
}

// Send issues a draft invoice. Returns false when the invoice is already sent
// (idempotent no-op, no event emitted).
func (i *Invoice) Send(now time.Time) (bool, error) {
	if i.Status == InvoiceStatusSent {
		return false, nil
	}
	if i.Status != InvoiceStatusDraft {
		return false, shared.ErrInvalidTransition
	}
	if !i.Total.IsPositive() {
		return false, shared.NewDomainError("VALIDATION_ERROR", "Invoice total must be positive before sending")
	}

	i.Status = InvoiceStatusSent
	i.SentAt = &now
	i.touch(now)
	i.AddDomainEvent(NewInvoiceSentEvent(i))
	return true, nil
}

// MarkOverdue transitions a sent invoice past its due date to overdue.
// Already-overdue invoices are a no-op so the daily sweep never produces
// duplicate audit events.
func (i *Invoice) MarkOverdue(now time.Time) (bool, error) {
	if i.Status == InvoiceStatusOverdue {
		return false, nil
	}
	if i.Status != InvoiceStatusSent {
		return false, shared.ErrInvalidTransition
	}
	if i.DueDate == nil || !i.DueDate.Before(now) {
		return false, shared.ErrInvalidTransition
	}
	if !i.BalanceDue().IsPositive() {
		return false, shared.ErrInvalidTransition
	}

	i.Status = InvoiceStatusOverdue
	i.touch(now)
	i.AddDomainEvent(NewInvoiceMarkedOverdueEvent(i))
	return true, nil
}

// RecordPayment applies a reported payment. Settlement happens outside the
// core; this only tracks amounts already reported as paid. Transitions to Paid
// when the balance reaches zero.
func (i *Invoice) RecordPayment(amount valueobject.Money, now time.Time) error {
	if !i.Status.CanAcceptPayment() {
		return shared.ErrInvalidTransition
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("VALIDATION_ERROR", "Payment amount must be positive")
	}
	newPaid, err := i.Paid.Add(amount)
	if err != nil {
		return shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}
	if newPaid.GreaterThan(i.Total) {
		return shared.NewDomainError("VALIDATION_ERROR", "Paid amount cannot exceed invoice total")
	}

	i.Paid = newPaid
	i.AddDomainEvent(NewInvoicePaymentReceivedEvent(i, amount))

	if i.BalanceDue().IsZero() {
		i.Status = InvoiceStatusPaid
		i.PaidAt = &now
	}
	i.touch(now)
	return nil
}

// MarkDepositPaid records the deposit as paid. Deposits may be paid while the
// invoice is still a draft; the deposit amount counts toward the paid total.
func (i *Invoice) MarkDepositPaid(now time.Time) error {
	if !i.DepositRequired {
		return shared.NewDomainError("VALIDATION_ERROR", "Invoice does not require a deposit")
	}
	if i.DepositPaid {
		return nil
	}
	if i.Status != InvoiceStatusDraft && !i.Status.CanAcceptPayment() {
		return shared.ErrInvalidTransition
	}

	newPaid, err := i.Paid.Add(*i.DepositAmount)
	if err != nil {
		return shared.NewDomainError("VALIDATION_ERROR", err.Error())
	}
	if newPaid.GreaterThan(i.Total) {
		return shared.NewDomainError("VALIDATION_ERROR", "Paid amount cannot exceed invoice total")
	}

	i.Paid = newPaid
	i.DepositPaid = true
	i.DepositPaidAt = &now
	i.AddDomainEvent(NewInvoiceDepositPaidEvent(i))

	if i.Status.CanAcceptPayment() && i.BalanceDue().IsZero() {
		i.Status = InvoiceStatusPaid
		i.PaidAt = &now
	}
	i.touch(now)
	return nil
}

// Cancel cancels an invoice. Only draft or sent invoices can be cancelled;
// cancelling an already-cancelled invoice is a no-op.
func (i *Invoice) Cancel(reason string, now time.Time) (bool, error) {
	if i.Status == InvoiceStatusCancelled {
		return false, nil
	}
	if i.Status != InvoiceStatusDraft && i.Status != InvoiceStatusSent {
		return false, shared.ErrInvalidTransition
	}
	if strings.TrimSpace(reason) == "" {
		return false, shared.NewDomainError("VALIDATION_ERROR", "Cancel reason is required")
	}

	i.Status = InvoiceStatusCancelled
	i.CancelledAt = &now
	i.CancelReason = reason
	i.touch(now)
	i.AddDomainEvent(NewInvoiceCancelledEvent(i))
	return true, nil
}

// IsDraft returns true for a draft invoice, which is invisible to customers
func (i *Invoice) IsDraft() bool {
	return i.Status == InvoiceStatusDraft
}

// IsOverdue returns true for an overdue invoice with an outstanding balance
func (i *Invoice) IsOverdue() bool {
	return i.Status == InvoiceStatusOverdue && i.BalanceDue().IsPositive()
}

// DepositOutstanding returns true when a required deposit has not been paid
// and the invoice is still draft or sent
func (i *Invoice) DepositOutstanding() bool {
	return i.DepositRequired && !i.DepositPaid &&
		(i.Status == InvoiceStatusDraft || i.Status == InvoiceStatusSent)
}

// CheckInvariants verifies the stored record against its domain invariants.
// A violation found at read time is a data-integrity fault, not a business error.
func (i *Invoice) CheckInvariants() error {
	if i.Paid.GreaterThan(i.Total) {
		return shared.ErrDataIntegrity
	}
	if i.DepositRequired && i.DepositAmount == nil {
		return shared.ErrDataIntegrity
	}
	if i.DepositPaid && i.DepositPaidAt == nil {
		return shared.ErrDataIntegrity
	}
	if i.Total.Amount() != i.Subtotal.Amount()+i.Tax.Amount() {
		return shared.ErrDataIntegrity
	}
	return nil
}

func (i *Invoice) touch(now time.Time) {
	i.UpdatedAt = now
	i.IncrementVersion()
}
