package proofing

import (
	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FileAssetUploadedEvent is raised when a first-version asset is uploaded
type FileAssetUploadedEvent struct {
	shared.BaseDomainEvent
	AssetID  uuid.UUID `json:"asset_id"`
	FileName string    `json:"file_name"`
	FileType FileType  `json:"file_type"`
}

// EventType returns the event type name
func (e *FileAssetUploadedEvent) EventType() string {
	return "FileAssetUploaded"
}

// NewFileAssetUploadedEvent creates a new FileAssetUploadedEvent
func NewFileAssetUploadedEvent(a *FileAsset) *FileAssetUploadedEvent {
	return &FileAssetUploadedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FileAssetUploaded", "FileAsset", a.ID, a.OrganizationID),
		AssetID:         a.ID,
		FileName:        a.FileName,
		FileType:        a.FileType,
	}
}

// FileAssetRevisedEvent is raised when a new revision supersedes a proof
type FileAssetRevisedEvent struct {
	shared.BaseDomainEvent
	AssetID       uuid.UUID `json:"asset_id"`
	PredecessorID uuid.UUID `json:"predecessor_id"`
	VersionNumber int       `json:"version_number"`
}

// EventType returns the event type name
func (e *FileAssetRevisedEvent) EventType() string {
	return "FileAssetRevised"
}

// NewFileAssetRevisedEvent creates a new FileAssetRevisedEvent
func NewFileAssetRevisedEvent(a *FileAsset, predecessorID uuid.UUID) *FileAssetRevisedEvent {
	return &FileAssetRevisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FileAssetRevised", "FileAsset", a.ID, a.OrganizationID),
		AssetID:         a.ID,
		PredecessorID:   predecessorID,
		VersionNumber:   a.VersionNumber,
	}
}

// ProofApprovedEvent is raised when a customer approves a proof
type ProofApprovedEvent struct {
	shared.BaseDomainEvent
	AssetID       uuid.UUID `json:"asset_id"`
	VersionNumber int       `json:"version_number"`
}

// EventType returns the event type name
func (e *ProofApprovedEvent) EventType() string {
	return "ProofApproved"
}

// NewProofApprovedEvent creates a new ProofApprovedEvent
func NewProofApprovedEvent(a *FileAsset) *ProofApprovedEvent {
	return &ProofApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ProofApproved", "FileAsset", a.ID, a.OrganizationID),
		AssetID:         a.ID,
		VersionNumber:   a.VersionNumber,
	}
}

// ProofRejectedEvent is raised when a customer rejects a proof
type ProofRejectedEvent struct {
	shared.BaseDomainEvent
	AssetID uuid.UUID `json:"asset_id"`
	Reason  string    `json:"reason"`
}

// EventType returns the event type name
func (e *ProofRejectedEvent) EventType() string {
	return "ProofRejected"
}

// NewProofRejectedEvent creates a new ProofRejectedEvent
func NewProofRejectedEvent(a *FileAsset) *ProofRejectedEvent {
	return &ProofRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ProofRejected", "FileAsset", a.ID, a.OrganizationID),
		AssetID:         a.ID,
		Reason:          a.RejectionReason,
	}
}

// ProofFinalizedEvent is raised when an approved proof is locked for production
type ProofFinalizedEvent struct {
	shared.BaseDomainEvent
	AssetID uuid.UUID `json:"asset_id"`
}

// EventType returns the event type name
func (e *ProofFinalizedEvent) EventType() string {
	return "ProofFinalized"
}

// NewProofFinalizedEvent creates a new ProofFinalizedEvent
func NewProofFinalizedEvent(a *FileAsset) *ProofFinalizedEvent {
	return &ProofFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ProofFinalized", "FileAsset", a.ID, a.OrganizationID),
		AssetID:         a.ID,
	}
}
