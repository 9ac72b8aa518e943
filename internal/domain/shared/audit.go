package shared

import (
	"time"

	"github.com/google/uuid"
)

// TriggeredByKind identifies what kind of actor produced an audit record
type TriggeredByKind string

const (
	TriggeredByPrincipal TriggeredByKind = "principal" // A resolved staff/admin/customer principal
	TriggeredBySystem    TriggeredByKind = "system"    // Scheduler or webhook automation
)

// AuditRecord is the common shape of append-only audit rows. Audit tables are
// created once per action and never mutated or deleted through the ordinary
// path; corrections are new compensating records.
type AuditRecord struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	ProjectID       uuid.UUID
	Type            string
	Data            map[string]any
	TriggeredBy     *uuid.UUID
	TriggeredByKind TriggeredByKind
	OccurredAt      time.Time
}

// NewAuditRecord creates an audit record attributed to a principal
func NewAuditRecord(orgID, projectID uuid.UUID, eventType string, data map[string]any, principalID uuid.UUID) AuditRecord {
	return AuditRecord{
		ID:              uuid.New(),
		OrganizationID:  orgID,
		ProjectID:       projectID,
		Type:            eventType,
		Data:            data,
		TriggeredBy:     &principalID,
		TriggeredByKind: TriggeredByPrincipal,
		OccurredAt:      time.Now(),
	}
}

// NewSystemAuditRecord creates an audit record attributed to the system principal
func NewSystemAuditRecord(orgID, projectID uuid.UUID, eventType string, data map[string]any) AuditRecord {
	return AuditRecord{
		ID:              uuid.New(),
		OrganizationID:  orgID,
		ProjectID:       projectID,
		Type:            eventType,
		Data:            data,
		TriggeredByKind: TriggeredBySystem,
		OccurredAt:      time.Now(),
	}
}
