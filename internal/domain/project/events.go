package project

import (
	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectCreatedEvent is raised when a new project is created
type ProjectCreatedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
}

// EventType returns the event type name
func (e *ProjectCreatedEvent) EventType() string {
	return "ProjectCreated"
}

// NewProjectCreatedEvent creates a new ProjectCreatedEvent
func NewProjectCreatedEvent(p *Project) *ProjectCreatedEvent {
	return &ProjectCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ProjectCreated", "Project", p.ID, p.OrganizationID),
		ProjectID:       p.ID,
		Name:            p.Name,
	}
}

// ProjectCompletedEvent is raised when a project completes
type ProjectCompletedEvent struct {
	shared.BaseDomainEvent
	ProjectID uuid.UUID `json:"project_id"`
}

// EventType returns the event type name
func (e *ProjectCompletedEvent) EventType() string {
	return "ProjectCompleted"
}

// NewProjectCompletedEvent creates a new ProjectCompletedEvent
func NewProjectCompletedEvent(p *Project) *ProjectCompletedEvent {
	return &ProjectCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ProjectCompleted", "Project", p.ID, p.OrganizationID),
		ProjectID:       p.ID,
	}
}
