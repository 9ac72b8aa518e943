package models

import (
	"encoding/json"
	"time"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel extends BaseModel with a version for optimistic locking
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToDomainAggregateRoot converts AggregateModel to domain BaseAggregateRoot
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.ToDomain(),
		Version:    m.Version,
	}
}

// OrgAggregateModel extends AggregateModel with the organization isolation
// boundary and creator attribution
type OrgAggregateModel struct {
	AggregateModel
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy      *uuid.UUID `gorm:"type:uuid;index"`
}

// FromDomainOrgAggregateRoot populates OrgAggregateModel from domain OrgAggregateRoot
func (m *OrgAggregateModel) FromDomainOrgAggregateRoot(a shared.OrgAggregateRoot) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.OrganizationID = a.OrganizationID
	m.CreatedBy = a.CreatedBy
}

// ToDomainOrgAggregateRoot converts OrgAggregateModel to domain OrgAggregateRoot
func (m *OrgAggregateModel) ToDomainOrgAggregateRoot() shared.OrgAggregateRoot {
	return shared.OrgAggregateRoot{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrganizationID:    m.OrganizationID,
		CreatedBy:         m.CreatedBy,
	}
}

// AuditRecordModel is the common persistence shape of append-only audit rows.
// Data is stored as jsonb; rows are inserted once and never updated.
type AuditRecordModel struct {
	ID              uuid.UUID              `gorm:"type:uuid;primaryKey"`
	OrganizationID  uuid.UUID              `gorm:"type:uuid;not null;index"`
	ProjectID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	Type            string                 `gorm:"type:varchar(50);not null"`
	Data            []byte                 `gorm:"type:jsonb"`
	TriggeredBy     *uuid.UUID             `gorm:"type:uuid"`
	TriggeredByKind shared.TriggeredByKind `gorm:"type:varchar(20);not null"`
	OccurredAt      time.Time              `gorm:"not null;index"`
}

// FromDomainAuditRecord populates the model from a domain AuditRecord
func (m *AuditRecordModel) FromDomainAuditRecord(r shared.AuditRecord) error {
	m.ID = r.ID
	m.OrganizationID = r.OrganizationID
	m.ProjectID = r.ProjectID
	m.Type = r.Type
	m.TriggeredBy = r.TriggeredBy
	m.TriggeredByKind = r.TriggeredByKind
	m.OccurredAt = r.OccurredAt
	if r.Data != nil {
		payload, err := json.Marshal(r.Data)
		if err != nil {
			return err
		}
		m.Data = payload
	}
	return nil
}

// ToDomainAuditRecord converts the model to a domain AuditRecord
func (m *AuditRecordModel) ToDomainAuditRecord() (shared.AuditRecord, error) {
	r := shared.AuditRecord{
		ID:              m.ID,
		OrganizationID:  m.OrganizationID,
		ProjectID:       m.ProjectID,
		Type:            m.Type,
		TriggeredBy:     m.TriggeredBy,
		TriggeredByKind: m.TriggeredByKind,
		OccurredAt:      m.OccurredAt,
	}
	if len(m.Data) > 0 {
		if err := json.Unmarshal(m.Data, &r.Data); err != nil {
			return r, err
		}
	}
	return r, nil
}
