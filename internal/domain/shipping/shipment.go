package shipping

import (
	"strings"
	"time"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ShipmentStatus represents the status of a shipment
type ShipmentStatus string

const (
	ShipmentStatusPending        ShipmentStatus = "pending"
	ShipmentStatusPreparing      ShipmentStatus = "preparing"
	ShipmentStatusShipped        ShipmentStatus = "shipped"
	ShipmentStatusInTransit      ShipmentStatus = "in_transit"
	ShipmentStatusOutForDelivery ShipmentStatus = "out_for_delivery"
	ShipmentStatusDelivered      ShipmentStatus = "delivered"
	ShipmentStatusFailed         ShipmentStatus = "failed"
	ShipmentStatusCancelled      ShipmentStatus = "cancelled"
	ShipmentStatusReturned       ShipmentStatus = "returned"
)

// IsValid checks if the status is a valid ShipmentStatus
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case ShipmentStatusPending, ShipmentStatusPreparing, ShipmentStatusShipped,
		ShipmentStatusInTransit, ShipmentStatusOutForDelivery, ShipmentStatusDelivered,
		ShipmentStatusFailed, ShipmentStatusCancelled, ShipmentStatusReturned:
		return true
	}
	return false
}

// String returns the string representation of ShipmentStatus
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the shipment is in a terminal state
func (s ShipmentStatus) IsTerminal() bool {
	return s == ShipmentStatusDelivered || s == ShipmentStatusCancelled || s == ShipmentStatusReturned
}

// InFlight returns true while the shipment is moving toward delivery
func (s ShipmentStatus) InFlight() bool {
	return s == ShipmentStatusShipped || s == ShipmentStatusInTransit || s == ShipmentStatusOutForDelivery
}

// allowedTransitions is the shipment state machine. Any pair not listed is
// rejected with InvalidTransition and leaves the record unchanged.
var allowedTransitions = map[ShipmentStatus][]ShipmentStatus{
	ShipmentStatusPending:        {ShipmentStatusPreparing, ShipmentStatusCancelled},
	ShipmentStatusPreparing:      {ShipmentStatusShipped, ShipmentStatusCancelled},
	ShipmentStatusShipped:        {ShipmentStatusInTransit, ShipmentStatusFailed},
	ShipmentStatusInTransit:      {ShipmentStatusOutForDelivery, ShipmentStatusFailed},
	ShipmentStatusOutForDelivery: {ShipmentStatusDelivered, ShipmentStatusFailed},
	ShipmentStatusFailed:         {ShipmentStatusPreparing, ShipmentStatusCancelled, ShipmentStatusReturned},
}

// CanTransition reports whether from -> to is in the allowed table
func CanTransition(from, to ShipmentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Shipment tracks one delivery for a project
type Shipment struct {
	shared.OrgAggregateRoot
	ProjectID            uuid.UUID
	Status               ShipmentStatus
	Carrier              string
	TrackingNumber       string
	ExpectedDeliveryDate *time.Time
	ActualShipDate       *time.Time
	ActualDeliveryDate   *time.Time
	FailureReason        string
}

// NewShipment creates a pending shipment for a project
func NewShipment(orgID, projectID, createdBy uuid.UUID, carrier string, expectedDelivery *time.Time) (*Shipment, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project ID cannot be empty")
	}

	s := &Shipment{
		OrgAggregateRoot:     shared.NewOrgAggregateRootWithCreator(orgID, createdBy),
		ProjectID:            projectID,
		Status:               ShipmentStatusPending,
		Carrier:              strings.TrimSpace(carrier),
		ExpectedDeliveryDate: expectedDelivery,
	}

	s.AddDomainEvent(NewShipmentCreatedEvent(s))

	return s, nil
}

// TransitionTo moves the shipment to the requested state. Re-applying the
// current state is a no-op; anything outside the allowed table is rejected
// without mutation. ActualDeliveryDate is set exactly once, on entry to
// Delivered.
func (s *Shipment) TransitionTo(next ShipmentStatus, reason string, now time.Time) (bool, error) {
	if !next.IsValid() {
		return false, shared.NewDomainError("VALIDATION_ERROR", "Unknown shipment status")
	}
	if s.Status == next {
		return false, nil
	}
	if !CanTransition(s.Status, next) {
		return false, shared.ErrInvalidTransition
	}

	previous := s.Status
	s.Status = next

	switch next {
	case ShipmentStatusShipped:
		if s.ActualShipDate == nil {
			s.ActualShipDate = &now
		}
	case ShipmentStatusDelivered:
		if s.ActualDeliveryDate == nil {
			s.ActualDeliveryDate = &now
		}
	case ShipmentStatusFailed:
		if strings.TrimSpace(reason) == "" {
			s.Status = previous
			return false, shared.NewDomainError("VALIDATION_ERROR", "Failure reason is required")
		}
		s.FailureReason = reason
	case ShipmentStatusPreparing:
		// Retry after failure clears the recorded reason
		s.FailureReason = ""
	}

	s.UpdatedAt = now
	s.IncrementVersion()
	s.AddDomainEvent(NewShipmentStatusChangedEvent(s, previous))
	return true, nil
}

// SetTracking records the carrier tracking number
func (s *Shipment) SetTracking(carrier, trackingNumber string, now time.Time) error {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Tracking number cannot be empty")
	}
	if s.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	if carrier = strings.TrimSpace(carrier); carrier != "" {
		s.Carrier = carrier
	}
	s.TrackingNumber = trackingNumber
	s.UpdatedAt = now
	s.IncrementVersion()
	s.AddDomainEvent(NewShipmentTrackingSetEvent(s))
	return nil
}

// SetExpectedDelivery updates the carrier's delivery estimate
func (s *Shipment) SetExpectedDelivery(expected time.Time, now time.Time) error {
	if s.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	s.ExpectedDeliveryDate = &expected
	s.UpdatedAt = now
	s.IncrementVersion()
	return nil
}

// MissingTracking returns true for a shipment in motion without a tracking
// number more than a day after it actually shipped
func (s *Shipment) MissingTracking(now time.Time) bool {
	if s.TrackingNumber != "" {
		return false
	}
	switch s.Status {
	case ShipmentStatusPending, ShipmentStatusCancelled, ShipmentStatusDelivered, ShipmentStatusReturned:
		return false
	}
	if s.ActualShipDate == nil {
		return false
	}
	return now.Sub(*s.ActualShipDate) > 24*time.Hour
}

// DeliveryOverdue returns true when the shipment is in flight past its
// expected delivery date
func (s *Shipment) DeliveryOverdue(now time.Time) bool {
	return s.Status.InFlight() && s.ExpectedDeliveryDate != nil && s.ExpectedDeliveryDate.Before(now)
}

// DeliveryAtRisk returns true when the shipment is in flight and due within
// the given window
func (s *Shipment) DeliveryAtRisk(now time.Time, window time.Duration) bool {
	if !s.Status.InFlight() || s.ExpectedDeliveryDate == nil {
		return false
	}
	if s.ExpectedDeliveryDate.Before(now) {
		return false
	}
	return s.ExpectedDeliveryDate.Sub(now) <= window
}

// CheckInvariants verifies the stored record against its domain invariants
func (s *Shipment) CheckInvariants() error {
	if !s.Status.IsValid() {
		return shared.ErrDataIntegrity
	}
	if s.ActualDeliveryDate != nil && s.Status != ShipmentStatusDelivered {
		return shared.ErrDataIntegrity
	}
	return nil
}
