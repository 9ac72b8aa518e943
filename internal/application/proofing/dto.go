package proofing

import (
	"time"

	"github.com/google/uuid"
)

// UploadFileInput contains input for uploading the first version of an asset
type UploadFileInput struct {
	OrganizationID uuid.UUID
	ProjectID      uuid.UUID
	FileName       string
	FileType       string
	StorageKey     string
}

// UploadRevisionInput contains input for uploading a new proof revision
type UploadRevisionInput struct {
	AssetID    uuid.UUID
	FileName   string
	StorageKey string
}

// RejectProofInput contains input for rejecting a pending proof
type RejectProofInput struct {
	AssetID uuid.UUID
	Reason  string
}

// FileAssetInfo is the file asset view returned to callers
type FileAssetInfo struct {
	ID               uuid.UUID  `json:"id"`
	OrganizationID   uuid.UUID  `json:"organization_id"`
	ProjectID        uuid.UUID  `json:"project_id"`
	FileName         string     `json:"file_name"`
	FileType         string     `json:"file_type"`
	StorageKey       string     `json:"storage_key"`
	VersionNumber    int        `json:"version_number"`
	IsCurrentVersion bool       `json:"is_current_version"`
	ParentID         *uuid.UUID `json:"parent_id,omitempty"`
	ApprovalStatus   string     `json:"approval_status,omitempty"`
	RejectionReason  string     `json:"rejection_reason,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	RejectedAt       *time.Time `json:"rejected_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ApprovalEventInfo is one audit row of a file asset
type ApprovalEventInfo struct {
	ID          uuid.UUID      `json:"id"`
	AssetID     uuid.UUID      `json:"asset_id"`
	EventType   string         `json:"event_type"`
	Data        map[string]any `json:"data,omitempty"`
	PrincipalID *uuid.UUID     `json:"principal_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
