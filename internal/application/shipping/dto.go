package shipping

import (
	"time"

	"github.com/google/uuid"
)

// CreateShipmentInput contains input for creating a shipment
type CreateShipmentInput struct {
	OrganizationID   uuid.UUID
	ProjectID        uuid.UUID
	Carrier          string
	ExpectedDelivery *time.Time
}

// TransitionShipmentInput contains input for moving a shipment to a new state
type TransitionShipmentInput struct {
	ShipmentID uuid.UUID
	Status     string
	Reason     string // Required when transitioning to failed
}

// SetTrackingInput contains input for recording a tracking number
type SetTrackingInput struct {
	ShipmentID     uuid.UUID
	Carrier        string
	TrackingNumber string
}

// ShipmentInfo is the shipment view returned to callers
type ShipmentInfo struct {
	ID                   uuid.UUID  `json:"id"`
	OrganizationID       uuid.UUID  `json:"organization_id"`
	ProjectID            uuid.UUID  `json:"project_id"`
	Status               string     `json:"status"`
	Carrier              string     `json:"carrier,omitempty"`
	TrackingNumber       string     `json:"tracking_number,omitempty"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date,omitempty"`
	ActualShipDate       *time.Time `json:"actual_ship_date,omitempty"`
	ActualDeliveryDate   *time.Time `json:"actual_delivery_date,omitempty"`
	FailureReason        string     `json:"failure_reason,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// ShipmentEventInfo is one audit row of a shipment
type ShipmentEventInfo struct {
	ID          uuid.UUID      `json:"id"`
	ShipmentID  uuid.UUID      `json:"shipment_id"`
	EventType   string         `json:"event_type"`
	Data        map[string]any `json:"data,omitempty"`
	PrincipalID *uuid.UUID     `json:"principal_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// DeliveryCheckResult summarizes one run of the delivery check
type DeliveryCheckResult struct {
	Examined        int `json:"examined"`
	Overdue         int `json:"overdue"`
	AtRisk          int `json:"at_risk"`
	MissingTracking int `json:"missing_tracking"`
}
