package models

import (
	"time"

	"github.com/packops/backend/internal/domain/proofing"
	"github.com/google/uuid"
)

// FileAssetModel is the persistence model for the FileAsset aggregate
type FileAssetModel struct {
	OrgAggregateModel
	ProjectID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	FileName         string                   `gorm:"type:varchar(255);not null"`
	FileType         proofing.FileType        `gorm:"type:varchar(20);not null;index"`
	StorageKey       string                   `gorm:"type:varchar(500);not null"`
	VersionNumber    int                      `gorm:"not null;default:1"`
	IsCurrentVersion bool                     `gorm:"not null;default:true;index"`
	ParentID         *uuid.UUID               `gorm:"type:uuid;index"`
	ApprovalStatus   *proofing.ApprovalStatus `gorm:"type:varchar(20);index"`
	RejectionReason  string                   `gorm:"type:text"`
	ApprovedAt       *time.Time
	RejectedAt       *time.Time
}

// TableName returns the table name for GORM
func (FileAssetModel) TableName() string {
	return "file_assets"
}

// ToDomain converts the persistence model to a domain FileAsset
func (m *FileAssetModel) ToDomain() *proofing.FileAsset {
	return &proofing.FileAsset{
		OrgAggregateRoot: m.ToDomainOrgAggregateRoot(),
		ProjectID:        m.ProjectID,
		FileName:         m.FileName,
		FileType:         m.FileType,
		StorageKey:       m.StorageKey,
		VersionNumber:    m.VersionNumber,
		IsCurrentVersion: m.IsCurrentVersion,
		ParentID:         m.ParentID,
		ApprovalStatus:   m.ApprovalStatus,
		RejectionReason:  m.RejectionReason,
		ApprovedAt:       m.ApprovedAt,
		RejectedAt:       m.RejectedAt,
	}
}

// FromDomain populates the persistence model from a domain FileAsset
func (m *FileAssetModel) FromDomain(a *proofing.FileAsset) {
	m.FromDomainOrgAggregateRoot(a.OrgAggregateRoot)
	m.ProjectID = a.ProjectID
	m.FileName = a.FileName
	m.FileType = a.FileType
	m.StorageKey = a.StorageKey
	m.VersionNumber = a.VersionNumber
	m.IsCurrentVersion = a.IsCurrentVersion
	m.ParentID = a.ParentID
	m.ApprovalStatus = a.ApprovalStatus
	m.RejectionReason = a.RejectionReason
	m.ApprovedAt = a.ApprovedAt
	m.RejectedAt = a.RejectedAt
}

// FileAssetModelFromDomain creates a persistence model from a domain FileAsset
func FileAssetModelFromDomain(a *proofing.FileAsset) *FileAssetModel {
	var m FileAssetModel
	m.FromDomain(a)
	return &m
}

// ApprovalEventModel is the persistence model for proof approval audit rows
type ApprovalEventModel struct {
	AuditRecordModel
	AssetID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (ApprovalEventModel) TableName() string {
	return "approval_events"
}

// ToDomain converts the persistence model to a domain ApprovalEvent
func (m *ApprovalEventModel) ToDomain() (*proofing.ApprovalEvent, error) {
	record, err := m.ToDomainAuditRecord()
	if err != nil {
		return nil, err
	}
	return &proofing.ApprovalEvent{
		AuditRecord: record,
		AssetID:     m.AssetID,
	}, nil
}

// FromDomain populates the persistence model from a domain ApprovalEvent
func (m *ApprovalEventModel) FromDomain(e *proofing.ApprovalEvent) error {
	if err := m.FromDomainAuditRecord(e.AuditRecord); err != nil {
		return err
	}
	m.AssetID = e.AssetID
	return nil
}
