package project

import (
	"strings"
	"time"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status represents the lifecycle status of a project
type Status string

const (
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if the status is a valid project Status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusOnHold, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if the project is in a terminal state
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Project groups the invoices, proofs and shipments of one customer job.
// It is owned by the customer organization and created by internal staff.
type Project struct {
	shared.OrgAggregateRoot
	Name        string
	Description string
	Status      Status
	CompletedAt *time.Time
	CancelledAt *time.Time
}

// NewProject creates a new active project for a customer organization
func NewProject(orgID, createdBy uuid.UUID, name, description string) (*Project, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PROJECT_NAME", "Project name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_PROJECT_NAME", "Project name cannot exceed 200 characters")
	}

	p := &Project{
		OrgAggregateRoot: shared.NewOrgAggregateRootWithCreator(orgID, createdBy),
		Name:             name,
		Description:      description,
		Status:           StatusActive,
	}

	p.AddDomainEvent(NewProjectCreatedEvent(p))

	return p, nil
}

// Hold places an active project on hold
func (p *Project) Hold() error {
	if p.Status == StatusOnHold {
		return nil
	}
	if p.Status != StatusActive {
		return shared.ErrInvalidTransition
	}
	p.Status = StatusOnHold
	p.touch()
	return nil
}

// Resume reactivates a project on hold
func (p *Project) Resume() error {
	if p.Status == StatusActive {
		return nil
	}
	if p.Status != StatusOnHold {
		return shared.ErrInvalidTransition
	}
	p.Status = StatusActive
	p.touch()
	return nil
}

// Complete marks an active project as completed
func (p *Project) Complete() error {
	if p.Status == StatusCompleted {
		return nil
	}
	if p.Status != StatusActive {
		return shared.ErrInvalidTransition
	}
	now := time.Now()
	p.Status = StatusCompleted
	p.CompletedAt = &now
	p.touch()
	p.AddDomainEvent(NewProjectCompletedEvent(p))
	return nil
}

// Cancel cancels a non-terminal project
func (p *Project) Cancel() error {
	if p.Status == StatusCancelled {
		return nil
	}
	if p.Status.IsTerminal() {
		return shared.ErrInvalidTransition
	}
	now := time.Now()
	p.Status = StatusCancelled
	p.CancelledAt = &now
	p.touch()
	return nil
}

func (p *Project) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
