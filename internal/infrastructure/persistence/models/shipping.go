package models

import (
	"time"

	"github.com/packops/backend/internal/domain/shipping"
	"github.com/google/uuid"
)

// ShipmentModel is the persistence model for the Shipment aggregate
type ShipmentModel struct {
	OrgAggregateModel
	ProjectID            uuid.UUID               `gorm:"type:uuid;not null;index"`
	Status               shipping.ShipmentStatus `gorm:"type:varchar(20);not null;index"`
	Carrier              string                  `gorm:"type:varchar(100)"`
	TrackingNumber       string                  `gorm:"type:varchar(100);index"`
	ExpectedDeliveryDate *time.Time              `gorm:"index"`
	ActualShipDate       *time.Time
	ActualDeliveryDate   *time.Time
	FailureReason        string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ToDomain converts the persistence model to a domain Shipment
func (m *ShipmentModel) ToDomain() *shipping.Shipment {
	return &shipping.Shipment{
		OrgAggregateRoot:     m.ToDomainOrgAggregateRoot(),
		ProjectID:            m.ProjectID,
		Status:               m.Status,
		Carrier:              m.Carrier,
		TrackingNumber:       m.TrackingNumber,
		ExpectedDeliveryDate: m.ExpectedDeliveryDate,
		ActualShipDate:       m.ActualShipDate,
		ActualDeliveryDate:   m.ActualDeliveryDate,
		FailureReason:        m.FailureReason,
	}
}

// FromDomain populates the persistence model from a domain Shipment
func (m *ShipmentModel) FromDomain(s *shipping.Shipment) {
	m.FromDomainOrgAggregateRoot(s.OrgAggregateRoot)
	m.ProjectID = s.ProjectID
	m.Status = s.Status
	m.Carrier = s.Carrier
	m.TrackingNumber = s.TrackingNumber
	m.ExpectedDeliveryDate = s.ExpectedDeliveryDate
	m.ActualShipDate = s.ActualShipDate
	m.ActualDeliveryDate = s.ActualDeliveryDate
	m.FailureReason = s.FailureReason
}

// ShipmentModelFromDomain creates a persistence model from a domain Shipment
func ShipmentModelFromDomain(s *shipping.Shipment) *ShipmentModel {
	var m ShipmentModel
	m.FromDomain(s)
	return &m
}

// ShipmentEventModel is the persistence model for shipment audit rows
type ShipmentEventModel struct {
	AuditRecordModel
	ShipmentID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (ShipmentEventModel) TableName() string {
	return "shipment_events"
}

// ToDomain converts the persistence model to a domain ShipmentEvent
func (m *ShipmentEventModel) ToDomain() (*shipping.ShipmentEvent, error) {
	record, err := m.ToDomainAuditRecord()
	if err != nil {
		return nil, err
	}
	return &shipping.ShipmentEvent{
		AuditRecord: record,
		ShipmentID:  m.ShipmentID,
	}, nil
}

// FromDomain populates the persistence model from a domain ShipmentEvent
func (m *ShipmentEventModel) FromDomain(e *shipping.ShipmentEvent) error {
	if err := m.FromDomainAuditRecord(e.AuditRecord); err != nil {
		return err
	}
	m.ShipmentID = e.ShipmentID
	return nil
}
