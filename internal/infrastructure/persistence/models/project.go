package models

import (
	"time"

	"github.com/packops/backend/internal/domain/project"
)

// ProjectModel is the persistence model for the Project aggregate
type ProjectModel struct {
	OrgAggregateModel
	Name        string         `gorm:"type:varchar(200);not null"`
	Description string         `gorm:"type:text"`
	Status      project.Status `gorm:"type:varchar(20);not null;index"`
	CompletedAt *time.Time
	CancelledAt *time.Time
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project
func (m *ProjectModel) ToDomain() *project.Project {
	return &project.Project{
		OrgAggregateRoot: m.ToDomainOrgAggregateRoot(),
		Name:             m.Name,
		Description:      m.Description,
		Status:           m.Status,
		CompletedAt:      m.CompletedAt,
		CancelledAt:      m.CancelledAt,
	}
}

// FromDomain populates the persistence model from a domain Project
func (m *ProjectModel) FromDomain(p *project.Project) {
	m.FromDomainOrgAggregateRoot(p.OrgAggregateRoot)
	m.Name = p.Name
	m.Description = p.Description
	m.Status = p.Status
	m.CompletedAt = p.CompletedAt
	m.CancelledAt = p.CancelledAt
}

// ProjectModelFromDomain creates a persistence model from a domain Project
func ProjectModelFromDomain(p *project.Project) *ProjectModel {
	var m ProjectModel
	m.FromDomain(p)
	return &m
}
