package billing

import (
	"time"

	"github.com/google/uuid"
)

// CreateInvoiceInput contains input for creating a draft invoice. Amounts are
// minor units (cents) in the given currency.
type CreateInvoiceInput struct {
	OrganizationID uuid.UUID
	ProjectID      uuid.UUID
	InvoiceNumber  string
	Subtotal       int64
	Tax            int64
	Currency       string
	DepositAmount  *int64 // Non-nil marks the deposit as required
	DueDate        *time.Time
}

// RecordPaymentInput contains input for recording a reported payment
type RecordPaymentInput struct {
	InvoiceID uuid.UUID
	Amount    int64
	Currency  string
	Reference string // External payment reference, recorded in the audit trail
}

// CancelInvoiceInput contains input for cancelling an invoice
type CancelInvoiceInput struct {
	InvoiceID uuid.UUID
	Reason    string
}

// CorrectInvoiceInput contains input for an admin compensating correction.
// The correction does not rewrite history; it appends a correction event.
type CorrectInvoiceInput struct {
	InvoiceID uuid.UUID
	Reason    string
	Data      map[string]any
}

// InvoiceInfo is the invoice view returned to callers
type InvoiceInfo struct {
	ID              uuid.UUID  `json:"id"`
	OrganizationID  uuid.UUID  `json:"organization_id"`
	ProjectID       uuid.UUID  `json:"project_id"`
	InvoiceNumber   string     `json:"invoice_number"`
	Subtotal        int64      `json:"subtotal"`
	Tax             int64      `json:"tax"`
	Total           int64      `json:"total"`
	Paid            int64      `json:"paid"`
	BalanceDue      int64      `json:"balance_due"`
	Currency        string     `json:"currency"`
	DepositRequired bool       `json:"deposit_required"`
	DepositAmount   *int64     `json:"deposit_amount,omitempty"`
	DepositPaid     bool       `json:"deposit_paid"`
	Status          string     `json:"status"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CancelReason    string     `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// InvoiceEventInfo is one audit row of an invoice
type InvoiceEventInfo struct {
	ID          uuid.UUID      `json:"id"`
	InvoiceID   uuid.UUID      `json:"invoice_id"`
	EventType   string         `json:"event_type"`
	Data        map[string]any `json:"data,omitempty"`
	PrincipalID *uuid.UUID     `json:"principal_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// OverdueSweepResult summarizes one run of the overdue sweep
type OverdueSweepResult struct {
	Examined int `json:"examined"`
	Marked   int `json:"marked"`
	Failed   int `json:"failed"`
}
