package models

import (
	"time"

	"github.com/packops/backend/internal/domain/billing"
	"github.com/packops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// InvoiceModel is the persistence model for the Invoice aggregate. Money is
// stored as minor units alongside a single currency column.
type InvoiceModel struct {
	OrgAggregateModel
	// Uniqueness per organization is enforced by a composite index in the migration
	InvoiceNumber   string                `gorm:"type:varchar(50);not null;index"`
	ProjectID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	Subtotal        int64                 `gorm:"not null"`
	Tax             int64                 `gorm:"not null"`
	Total           int64                 `gorm:"not null"`
	Paid            int64                 `gorm:"not null;default:0"`
	Currency        string                `gorm:"type:varchar(3);not null"`
	DepositRequired bool                  `gorm:"not null;default:false"`
	DepositAmount   *int64                ``
	DepositPaid     bool                  `gorm:"not null;default:false"`
	DepositPaidAt   *time.Time            ``
	Status          billing.InvoiceStatus `gorm:"type:varchar(20);not null;index"`
	DueDate         *time.Time            `gorm:"index"`
	SentAt          *time.Time
	PaidAt          *time.Time
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		OrgAggregateRoot: m.ToDomainOrgAggregateRoot(),
		InvoiceNumber:    m.InvoiceNumber,
		ProjectID:        m.ProjectID,
		Subtotal:         valueobject.NewMoney(m.Subtotal, m.Currency),
		Tax:              valueobject.NewMoney(m.Tax, m.Currency),
		Total:            valueobject.NewMoney(m.Total, m.Currency),
		Paid:             valueobject.NewMoney(m.Paid, m.Currency),
		DepositRequired:  m.DepositRequired,
		DepositPaid:      m.DepositPaid,
		DepositPaidAt:    m.DepositPaidAt,
		Status:           m.Status,
		DueDate:          m.DueDate,
		SentAt:           m.SentAt,
		PaidAt:           m.PaidAt,
		CancelledAt:      m.CancelledAt,
		CancelReason:     m.CancelReason,
	}
	if m.DepositAmount != nil {
		d := valueobject.NewMoney(*m.DepositAmount, m.Currency)
		inv.DepositAmount = &d
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainOrgAggregateRoot(inv.OrgAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.ProjectID = inv.ProjectID
	m.Subtotal = inv.Subtotal.Amount()
	m.Tax = inv.Tax.Amount()
	m.Total = inv.Total.Amount()
	m.Paid = inv.Paid.Amount()
	m.Currency = inv.Total.Currency()
	m.DepositRequired = inv.DepositRequired
	m.DepositPaid = inv.DepositPaid
	m.DepositPaidAt = inv.DepositPaidAt
	m.Status = inv.Status
	m.DueDate = inv.DueDate
	m.SentAt = inv.SentAt
	m.PaidAt = inv.PaidAt
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason
	if inv.DepositAmount != nil {
		amt := inv.DepositAmount.Amount()
		m.DepositAmount = &amt
	} else {
		m.DepositAmount = nil
	}
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	var m InvoiceModel
	m.FromDomain(inv)
	return &m
}

// InvoiceEventModel is the persistence model for invoice audit rows
type InvoiceEventModel struct {
	AuditRecordModel
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (InvoiceEventModel) TableName() string {
	return "invoice_events"
}

// ToDomain converts the persistence model to a domain InvoiceEvent
func (m *InvoiceEventModel) ToDomain() (*billing.InvoiceEvent, error) {
	record, err := m.ToDomainAuditRecord()
	if err != nil {
		return nil, err
	}
	return &billing.InvoiceEvent{
		AuditRecord: record,
		InvoiceID:   m.InvoiceID,
	}, nil
}

// FromDomain populates the persistence model from a domain InvoiceEvent
func (m *InvoiceEventModel) FromDomain(e *billing.InvoiceEvent) error {
	if err := m.FromDomainAuditRecord(e.AuditRecord); err != nil {
		return err
	}
	m.InvoiceID = e.InvoiceID
	return nil
}
