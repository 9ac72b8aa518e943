package shipping

import (
	"context"
	"time"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Audit event types recorded for shipments
const (
	AuditShipmentCreated = "created"
	AuditStatusChanged   = "status_changed"
	AuditTrackingSet     = "tracking_set"
)

// ShipmentEvent is an append-only audit row for one shipment action
type ShipmentEvent struct {
	shared.AuditRecord
	ShipmentID uuid.UUID
}

// NewShipmentEvent creates a shipment audit event attributed to a principal
func NewShipmentEvent(s *Shipment, eventType string, data map[string]any, principalID uuid.UUID) *ShipmentEvent {
	return &ShipmentEvent{
		AuditRecord: shared.NewAuditRecord(s.OrganizationID, s.ProjectID, eventType, data, principalID),
		ShipmentID:  s.ID,
	}
}

// NewSystemShipmentEvent creates a shipment audit event attributed to the system
func NewSystemShipmentEvent(s *Shipment, eventType string, data map[string]any) *ShipmentEvent {
	return &ShipmentEvent{
		AuditRecord: shared.NewSystemAuditRecord(s.OrganizationID, s.ProjectID, eventType, data),
		ShipmentID:  s.ID,
	}
}

// ShipmentEventRepository persists shipment audit rows, insert-only
type ShipmentEventRepository interface {
	Append(ctx context.Context, event *ShipmentEvent) error
	FindByShipment(ctx context.Context, shipmentID uuid.UUID) ([]ShipmentEvent, error)
}

// ShipmentFilter defines filtering options for shipment queries
type ShipmentFilter struct {
	shared.Filter
	ProjectID       *uuid.UUID
	Status          *ShipmentStatus
	InFlightOnly    bool
	ExpectedBefore  *time.Time
	MissingTracking bool
}

// ShipmentRepository persists shipments
type ShipmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Shipment, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*Shipment, error)
	FindAll(ctx context.Context, filter ShipmentFilter) ([]Shipment, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter ShipmentFilter) ([]Shipment, error)
	Save(ctx context.Context, s *Shipment) error
	SaveWithLock(ctx context.Context, s *Shipment) error
	// SaveWithEvent saves the shipment and appends the audit event in one
	// transaction, under the same optimistic lock as SaveWithLock. A nil
	// event saves the shipment alone.
	SaveWithEvent(ctx context.Context, s *Shipment, event *ShipmentEvent) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter ShipmentFilter) (int64, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter ShipmentFilter) (int64, error)
}
