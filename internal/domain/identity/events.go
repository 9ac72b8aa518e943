package identity

import (
	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrganizationCreatedEvent is raised when a new organization is created
type OrganizationCreatedEvent struct {
	shared.BaseDomainEvent
	Name string           `json:"name"`
	Kind OrganizationKind `json:"kind"`
}

// EventType returns the event type name
func (e *OrganizationCreatedEvent) EventType() string {
	return "OrganizationCreated"
}

// NewOrganizationCreatedEvent creates a new OrganizationCreatedEvent
func NewOrganizationCreatedEvent(o *Organization) *OrganizationCreatedEvent {
	return &OrganizationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("OrganizationCreated", "Organization", o.ID, o.ID),
		Name:            o.Name,
		Kind:            o.Kind,
	}
}

// PrincipalCreatedEvent is raised when a new principal is created
type PrincipalCreatedEvent struct {
	shared.BaseDomainEvent
	PrincipalID uuid.UUID `json:"principal_id"`
	Username    string    `json:"username"`
	Role        Role      `json:"role"`
}

// EventType returns the event type name
func (e *PrincipalCreatedEvent) EventType() string {
	return "PrincipalCreated"
}

// NewPrincipalCreatedEvent creates a new PrincipalCreatedEvent
func NewPrincipalCreatedEvent(p *Principal) *PrincipalCreatedEvent {
	return &PrincipalCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PrincipalCreated", "Principal", p.ID, p.OrganizationID),
		PrincipalID:     p.ID,
		Username:        p.Username,
		Role:            p.Role,
	}
}
