package project

import (
	"time"

	"github.com/google/uuid"
)

// CreateProjectInput contains input for creating a project
type CreateProjectInput struct {
	OrganizationID uuid.UUID
	Name           string
	Description    string
}

// ProjectInfo is the project view returned to callers
type ProjectInfo struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
