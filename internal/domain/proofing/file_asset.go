package proofing

import (
	"strings"
	"time"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FileType classifies an uploaded asset
type FileType string

const (
	FileTypeProof    FileType = "proof"    // Production proof requiring customer approval
	FileTypeArtwork  FileType = "artwork"  // Customer-supplied artwork
	FileTypeDocument FileType = "document" // Supporting document, no approval flow
)

// IsValid checks if the file type is a valid FileType
func (t FileType) IsValid() bool {
	switch t {
	case FileTypeProof, FileTypeArtwork, FileTypeDocument:
		return true
	}
	return false
}

// String returns the string representation of FileType
func (t FileType) String() string {
	return string(t)
}

// ApprovalStatus represents the review state of a proof
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
	ApprovalRevision ApprovalStatus = "revision" // Superseded by a newer version
	ApprovalFinal    ApprovalStatus = "final"    // Approved and locked for production
)

// IsValid checks if the status is a valid ApprovalStatus
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected, ApprovalRevision, ApprovalFinal:
		return true
	}
	return false
}

// String returns the string representation of ApprovalStatus
func (s ApprovalStatus) String() string {
	return string(s)
}

// FileAsset is one version in a proof revision chain. Within a chain (linked
// by ParentID) at most one asset carries IsCurrentVersion; promotion of a new
// revision demotes its predecessor in the same transaction.
type FileAsset struct {
	shared.OrgAggregateRoot
	ProjectID        uuid.UUID
	FileName         string
	FileType         FileType
	StorageKey       string // Opaque key into the external file store
	VersionNumber    int
	IsCurrentVersion bool
	ParentID         *uuid.UUID
	ApprovalStatus   *ApprovalStatus
	RejectionReason  string
	ApprovedAt       *time.Time
	RejectedAt       *time.Time
}

// NewFileAsset creates the first version of an asset. Proofs start pending
// approval; other file types carry no approval state.
func NewFileAsset(orgID, projectID, createdBy uuid.UUID, fileName string, fileType FileType, storageKey string) (*FileAsset, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project ID cannot be empty")
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if !fileType.IsValid() {
		return nil, shared.NewDomainError("INVALID_FILE_TYPE", "File type is not valid")
	}
	if storageKey == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}

	a := &FileAsset{
		OrgAggregateRoot: shared.NewOrgAggregateRootWithCreator(orgID, createdBy),
		ProjectID:        projectID,
		FileName:         fileName,
		FileType:         fileType,
		StorageKey:       storageKey,
		VersionNumber:    1,
		IsCurrentVersion: true,
	}
	if fileType == FileTypeProof {
		pending := ApprovalPending
		a.ApprovalStatus = &pending
	}

	a.AddDomainEvent(NewFileAssetUploadedEvent(a))

	return a, nil
}

// NewRevision creates the next version of this asset, linked by ParentID and
// pending approval. The caller must persist it through the repository's
// compare-and-swap promotion so that only one upload wins a race.
func (a *FileAsset) NewRevision(createdBy uuid.UUID, fileName, storageKey string) (*FileAsset, error) {
	if a.FileType != FileTypeProof {
		return nil, shared.NewDomainError("INVALID_FILE_TYPE", "Only proofs carry revision chains")
	}
	if !a.IsCurrentVersion {
		return nil, shared.NewDomainError("STALE_VERSION", "Revisions can only be uploaded against the current version")
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		fileName = a.FileName
	}
	if storageKey == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}

	pending := ApprovalPending
	rev := &FileAsset{
		OrgAggregateRoot: shared.NewOrgAggregateRootWithCreator(a.OrganizationID, createdBy),
		ProjectID:        a.ProjectID,
		FileName:         fileName,
		FileType:         a.FileType,
		StorageKey:       storageKey,
		VersionNumber:    a.VersionNumber + 1,
		IsCurrentVersion: true,
		ParentID:         &a.ID,
		ApprovalStatus:   &pending,
	}

	rev.AddDomainEvent(NewFileAssetRevisedEvent(rev, a.ID))

	return rev, nil
}

// Demote clears the current-version flag and marks the asset as superseded
func (a *FileAsset) Demote(now time.Time) {
	a.IsCurrentVersion = false
	if a.ApprovalStatus != nil && (*a.ApprovalStatus == ApprovalPending ||
		*a.ApprovalStatus == ApprovalRejected || *a.ApprovalStatus == ApprovalApproved) {
		revision := ApprovalRevision
		a.ApprovalStatus = &revision
	}
	a.UpdatedAt = now
	a.IncrementVersion()
}

// Approve transitions a pending proof to approved
func (a *FileAsset) Approve(now time.Time) error {
	if a.FileType != FileTypeProof || a.ApprovalStatus == nil {
		return shared.ErrInvalidTransition
	}
	if *a.ApprovalStatus == ApprovalApproved {
		return nil
	}
	if *a.ApprovalStatus != ApprovalPending {
		return shared.ErrInvalidTransition
	}
	approved := ApprovalApproved
	a.ApprovalStatus = &approved
	a.ApprovedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()
	a.AddDomainEvent(NewProofApprovedEvent(a))
	return nil
}

// Reject transitions a pending proof to rejected. A reason is required.
func (a *FileAsset) Reject(reason string, now time.Time) error {
	if a.FileType != FileTypeProof || a.ApprovalStatus == nil {
		return shared.ErrInvalidTransition
	}
	if *a.ApprovalStatus == ApprovalRejected {
		return nil
	}
	if *a.ApprovalStatus != ApprovalPending {
		return shared.ErrInvalidTransition
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Rejection reason is required")
	}
	rejected := ApprovalRejected
	a.ApprovalStatus = &rejected
	a.RejectionReason = reason
	a.RejectedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()
	a.AddDomainEvent(NewProofRejectedEvent(a))
	return nil
}

// MarkFinal locks an approved proof for production
func (a *FileAsset) MarkFinal(now time.Time) error {
	if a.FileType != FileTypeProof || a.ApprovalStatus == nil {
		return shared.ErrInvalidTransition
	}
	if *a.ApprovalStatus == ApprovalFinal {
		return nil
	}
	if *a.ApprovalStatus != ApprovalApproved || !a.IsCurrentVersion {
		return shared.ErrInvalidTransition
	}
	final := ApprovalFinal
	a.ApprovalStatus = &final
	a.UpdatedAt = now
	a.IncrementVersion()
	a.AddDomainEvent(NewProofFinalizedEvent(a))
	return nil
}

// IsPendingProof returns true for a current proof version awaiting review
func (a *FileAsset) IsPendingProof() bool {
	return a.FileType == FileTypeProof && a.IsCurrentVersion &&
		a.ApprovalStatus != nil && *a.ApprovalStatus == ApprovalPending
}

// PendingAge returns how long the proof has been awaiting review
func (a *FileAsset) PendingAge(now time.Time) time.Duration {
	return now.Sub(a.CreatedAt)
}

// CheckInvariants verifies the stored record against its domain invariants
func (a *FileAsset) CheckInvariants() error {
	if a.FileType == FileTypeProof && a.ApprovalStatus == nil {
		return shared.ErrDataIntegrity
	}
	if a.VersionNumber < 1 {
		return shared.ErrDataIntegrity
	}
	if a.VersionNumber > 1 && a.ParentID == nil {
		return shared.ErrDataIntegrity
	}
	return nil
}
