package shipping

import (
	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ShipmentCreatedEvent is raised when a shipment is created
type ShipmentCreatedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID `json:"shipment_id"`
	ProjectID  uuid.UUID `json:"project_id"`
}

// EventType returns the event type name
func (e *ShipmentCreatedEvent) EventType() string {
	return "ShipmentCreated"
}

// NewShipmentCreatedEvent creates a new ShipmentCreatedEvent
func NewShipmentCreatedEvent(s *Shipment) *ShipmentCreatedEvent {
	return &ShipmentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ShipmentCreated", "Shipment", s.ID, s.OrganizationID),
		ShipmentID:      s.ID,
		ProjectID:       s.ProjectID,
	}
}

// ShipmentStatusChangedEvent is raised on every status transition
type ShipmentStatusChangedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID      `json:"shipment_id"`
	From       ShipmentStatus `json:"from"`
	To         ShipmentStatus `json:"to"`
}

// EventType returns the event type name
func (e *ShipmentStatusChangedEvent) EventType() string {
	return "ShipmentStatusChanged"
}

// NewShipmentStatusChangedEvent creates a new ShipmentStatusChangedEvent
func NewShipmentStatusChangedEvent(s *Shipment, from ShipmentStatus) *ShipmentStatusChangedEvent {
	return &ShipmentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ShipmentStatusChanged", "Shipment", s.ID, s.OrganizationID),
		ShipmentID:      s.ID,
		From:            from,
		To:              s.Status,
	}
}

// ShipmentTrackingSetEvent is raised when a tracking number is recorded
type ShipmentTrackingSetEvent struct {
	shared.BaseDomainEvent
	ShipmentID     uuid.UUID `json:"shipment_id"`
	Carrier        string    `json:"carrier"`
	TrackingNumber string    `json:"tracking_number"`
}

// EventType returns the event type name
func (e *ShipmentTrackingSetEvent) EventType() string {
	return "ShipmentTrackingSet"
}

// NewShipmentTrackingSetEvent creates a new ShipmentTrackingSetEvent
func NewShipmentTrackingSetEvent(s *Shipment) *ShipmentTrackingSetEvent {
	return &ShipmentTrackingSetEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ShipmentTrackingSet", "Shipment", s.ID, s.OrganizationID),
		ShipmentID:      s.ID,
		Carrier:         s.Carrier,
		TrackingNumber:  s.TrackingNumber,
	}
}
