package proofing

import (
	"context"
	"time"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Audit event types recorded for proof approvals
const (
	AuditProofUploaded  = "uploaded"
	AuditProofRevised   = "revised"
	AuditProofApproved  = "approved"
	AuditProofRejected  = "rejected"
	AuditProofFinalized = "finalized"
)

// ApprovalEvent is an append-only audit row for one file-asset action
type ApprovalEvent struct {
	shared.AuditRecord
	AssetID uuid.UUID
}

// NewApprovalEvent creates an approval audit event attributed to a principal
func NewApprovalEvent(a *FileAsset, eventType string, data map[string]any, principalID uuid.UUID) *ApprovalEvent {
	return &ApprovalEvent{
		AuditRecord: shared.NewAuditRecord(a.OrganizationID, a.ProjectID, eventType, data, principalID),
		AssetID:     a.ID,
	}
}

// ApprovalEventRepository persists approval audit rows, insert-only
type ApprovalEventRepository interface {
	Append(ctx context.Context, event *ApprovalEvent) error
	FindByAsset(ctx context.Context, assetID uuid.UUID) ([]ApprovalEvent, error)
}

// FileAssetFilter defines filtering options for file asset queries
type FileAssetFilter struct {
	shared.Filter
	ProjectID      *uuid.UUID
	FileType       *FileType
	ApprovalStatus *ApprovalStatus
	CurrentOnly    bool
	PendingSince   *time.Time
}

// FileAssetRepository persists file assets and their version chains
type FileAssetRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FileAsset, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*FileAsset, error)
	FindAll(ctx context.Context, filter FileAssetFilter) ([]FileAsset, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter FileAssetFilter) ([]FileAsset, error)
	// FindChain returns every version in the chain containing the given asset,
	// ordered by version number ascending.
	FindChain(ctx context.Context, orgID, assetID uuid.UUID) ([]FileAsset, error)
	Save(ctx context.Context, a *FileAsset) error
	// SaveWithEvent saves the asset and appends the audit event in one
	// transaction. A nil event saves the asset alone.
	SaveWithEvent(ctx context.Context, a *FileAsset, event *ApprovalEvent) error
	// PromoteRevision atomically demotes the predecessor, inserts the new
	// current version and appends the audit event. The demote is a
	// compare-and-swap on the predecessor's id with is_current_version still
	// true; a lost race returns shared.ErrConcurrencyConflict and inserts
	// nothing.
	PromoteRevision(ctx context.Context, predecessor, revision *FileAsset, event *ApprovalEvent) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter FileAssetFilter) (int64, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter FileAssetFilter) (int64, error)
}
