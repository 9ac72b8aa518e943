package proofing

import (
	"context"
	"strings"
	"time"

	"github.com/packops/backend/internal/domain/authz"
	"github.com/packops/backend/internal/domain/identity"
	"github.com/packops/backend/internal/domain/project"
	"github.com/packops/backend/internal/domain/proofing"
	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service manages file assets and the proof approval flow. Approval decisions
// run through the policy evaluator so the customer carve-out and the staff
// paths share one rule table.
type Service struct {
	assetRepo   proofing.FileAssetRepository
	eventRepo   proofing.ApprovalEventRepository
	projectRepo project.Repository
	evaluator   *authz.Evaluator
	logger      *zap.Logger
}

// NewService creates a new proofing service
func NewService(
	assetRepo proofing.FileAssetRepository,
	eventRepo proofing.ApprovalEventRepository,
	projectRepo project.Repository,
	evaluator *authz.Evaluator,
	logger *zap.Logger,
) *Service {
	return &Service{
		assetRepo:   assetRepo,
		eventRepo:   eventRepo,
		projectRepo: projectRepo,
		evaluator:   evaluator,
		logger:      logger,
	}
}

// Upload registers the first version of a file asset on a project
func (s *Service) Upload(ctx context.Context, caller identity.PrincipalContext, input UploadFileInput) (*FileAssetInfo, error) {
	if err := s.evaluator.Evaluate(caller, authz.OpCreate, authz.RecordRef{
		Kind:           authz.KindFileAsset,
		OrganizationID: input.OrganizationID,
	}); err != nil {
		return nil, err
	}

	proj, err := s.projectRepo.FindByIDForOrg(ctx, input.OrganizationID, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if proj.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot upload to a completed or cancelled project")
	}

	fileType := proofing.FileType(strings.ToLower(strings.TrimSpace(input.FileType)))
	asset, err := proofing.NewFileAsset(input.OrganizationID, input.ProjectID, caller.PrincipalID, input.FileName, fileType, input.StorageKey)
	if err != nil {
		return nil, err
	}

	var event *proofing.ApprovalEvent
	if asset.FileType == proofing.FileTypeProof {
		event = proofing.NewApprovalEvent(asset, proofing.AuditProofUploaded, map[string]any{
			"file_name": asset.FileName,
			"version":   asset.VersionNumber,
		}, caller.PrincipalID)
	}
	if err := s.assetRepo.SaveWithEvent(ctx, asset, event); err != nil {
		s.logger.Error("Failed to save file asset", zap.Error(err))
		return nil, err
	}

	s.logger.Info("File asset uploaded",
		zap.String("asset_id", asset.ID.String()),
		zap.String("project_id", asset.ProjectID.String()),
		zap.String("file_type", asset.FileType.String()))

	return toFileAssetInfo(asset), nil
}

// UploadRevision uploads a new proof version. The predecessor is demoted and
// the revision inserted in one compare-and-swap; concurrent uploads against
// the same predecessor lose with a conflict instead of forking the chain.
func (s *Service) UploadRevision(ctx context.Context, caller identity.PrincipalContext, input UploadRevisionInput) (*FileAssetInfo, error) {
	predecessor, err := s.assetRepo.FindByID(ctx, input.AssetID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Evaluate(caller, authz.OpUpdate, authz.RecordRef{
		Kind:           authz.KindFileAsset,
		OrganizationID: predecessor.OrganizationID,
		FileType:       predecessor.FileType,
	}); err != nil {
		return nil, err
	}

	revision, err := predecessor.NewRevision(caller.PrincipalID, input.FileName, input.StorageKey)
	if err != nil {
		return nil, err
	}
	predecessor.Demote(time.Now())

	event := proofing.NewApprovalEvent(revision, proofing.AuditProofRevised, map[string]any{
		"predecessor_id": predecessor.ID,
		"version":        revision.VersionNumber,
	}, caller.PrincipalID)

	if err := s.assetRepo.PromoteRevision(ctx, predecessor, revision, event); err != nil {
		if shared.IsConcurrencyConflict(err) {
			s.logger.Warn("Lost revision race",
				zap.String("asset_id", predecessor.ID.String()))
		}
		return nil, err
	}

	s.logger.Info("Proof revision uploaded",
		zap.String("asset_id", revision.ID.String()),
		zap.Int("version", revision.VersionNumber))

	return toFileAssetInfo(revision), nil
}

// Approve approves a pending proof
func (s *Service) Approve(ctx context.Context, caller identity.PrincipalContext, assetID uuid.UUID) (*FileAssetInfo, error) {
	asset, err := s.assetRepo.FindByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeApproval(caller, asset, proofing.ApprovalApproved, ""); err != nil {
		return nil, err
	}

	already := asset.ApprovalStatus != nil && *asset.ApprovalStatus == proofing.ApprovalApproved
	if err := asset.Approve(time.Now()); err != nil {
		return nil, err
	}
	if already {
		return toFileAssetInfo(asset), nil
	}

	event := proofing.NewApprovalEvent(asset, proofing.AuditProofApproved, map[string]any{
		"version": asset.VersionNumber,
	}, caller.PrincipalID)
	if err := s.assetRepo.SaveWithEvent(ctx, asset, event); err != nil {
		return nil, err
	}

	s.logger.Info("Proof approved",
		zap.String("asset_id", asset.ID.String()),
		zap.String("principal_id", caller.PrincipalID.String()))

	return toFileAssetInfo(asset), nil
}

// Reject rejects a pending proof with a reason
func (s *Service) Reject(ctx context.Context, caller identity.PrincipalContext, input RejectProofInput) (*FileAssetInfo, error) {
	asset, err := s.assetRepo.FindByID(ctx, input.AssetID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeApproval(caller, asset, proofing.ApprovalRejected, input.Reason); err != nil {
		return nil, err
	}

	already := asset.ApprovalStatus != nil && *asset.ApprovalStatus == proofing.ApprovalRejected
	if err := asset.Reject(input.Reason, time.Now()); err != nil {
		return nil, err
	}
	if already {
		return toFileAssetInfo(asset), nil
	}

	event := proofing.NewApprovalEvent(asset, proofing.AuditProofRejected, map[string]any{
		"version": asset.VersionNumber,
		"reason":  input.Reason,
	}, caller.PrincipalID)
	if err := s.assetRepo.SaveWithEvent(ctx, asset, event); err != nil {
		return nil, err
	}

	s.logger.Info("Proof rejected",
		zap.String("asset_id", asset.ID.String()),
		zap.String("reason", input.Reason))

	return toFileAssetInfo(asset), nil
}

// Finalize locks an approved proof for production. This is an internal step;
// customers never finalize.
func (s *Service) Finalize(ctx context.Context, caller identity.PrincipalContext, assetID uuid.UUID) (*FileAssetInfo, error) {
	asset, err := s.assetRepo.FindByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeApproval(caller, asset, proofing.ApprovalFinal, ""); err != nil {
		return nil, err
	}

	already := asset.ApprovalStatus != nil && *asset.ApprovalStatus == proofing.ApprovalFinal
	if err := asset.MarkFinal(time.Now()); err != nil {
		return nil, err
	}
	if already {
		return toFileAssetInfo(asset), nil
	}

	event := proofing.NewApprovalEvent(asset, proofing.AuditProofFinalized, map[string]any{
		"version": asset.VersionNumber,
	}, caller.PrincipalID)
	if err := s.assetRepo.SaveWithEvent(ctx, asset, event); err != nil {
		return nil, err
	}

	s.logger.Info("Proof finalized",
		zap.String("asset_id", asset.ID.String()),
		zap.Int("version", asset.VersionNumber))

	return toFileAssetInfo(asset), nil
}

// Get returns one file asset visible to the caller
func (s *Service) Get(ctx context.Context, caller identity.PrincipalContext, assetID uuid.UUID) (*FileAssetInfo, error) {
	asset, err := s.loadForRead(ctx, caller, assetID)
	if err != nil {
		return nil, err
	}
	return toFileAssetInfo(asset), nil
}

// List returns file assets visible to the caller
func (s *Service) List(ctx context.Context, caller identity.PrincipalContext, filter proofing.FileAssetFilter) ([]FileAssetInfo, error) {
	var (
		assets []proofing.FileAsset
		err    error
	)
	if caller.IsInternal() || caller.IsSystem() {
		assets, err = s.assetRepo.FindAll(ctx, filter)
	} else {
		assets, err = s.assetRepo.FindAllForOrg(ctx, caller.OrganizationID, filter)
	}
	if err != nil {
		return nil, err
	}

	infos := make([]FileAssetInfo, 0, len(assets))
	for i := range assets {
		infos = append(infos, *toFileAssetInfo(&assets[i]))
	}
	return infos, nil
}

// GetChain returns every version of a proof chain, oldest first
func (s *Service) GetChain(ctx context.Context, caller identity.PrincipalContext, assetID uuid.UUID) ([]FileAssetInfo, error) {
	asset, err := s.loadForRead(ctx, caller, assetID)
	if err != nil {
		return nil, err
	}

	chain, err := s.assetRepo.FindChain(ctx, asset.OrganizationID, assetID)
	if err != nil {
		return nil, err
	}
	infos := make([]FileAssetInfo, 0, len(chain))
	for i := range chain {
		infos = append(infos, *toFileAssetInfo(&chain[i]))
	}
	return infos, nil
}

// GetEvents returns the approval audit trail of one asset. Trail visibility
// follows the asset's visibility.
func (s *Service) GetEvents(ctx context.Context, caller identity.PrincipalContext, assetID uuid.UUID) ([]ApprovalEventInfo, error) {
	if _, err := s.loadForRead(ctx, caller, assetID); err != nil {
		return nil, err
	}

	events, err := s.eventRepo.FindByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	infos := make([]ApprovalEventInfo, 0, len(events))
	for i := range events {
		e := &events[i]
		infos = append(infos, ApprovalEventInfo{
			ID:          e.ID,
			AssetID:     e.AssetID,
			EventType:   e.Type,
			Data:        e.Data,
			PrincipalID: e.TriggeredBy,
			CreatedAt:   e.OccurredAt,
		})
	}
	return infos, nil
}

// loadForRead fetches an asset for the caller. Internal and system callers
// fetch unscoped; everyone else fetches through the org scope, so a foreign
// asset and a missing ID are the same absence.
func (s *Service) loadForRead(ctx context.Context, caller identity.PrincipalContext, assetID uuid.UUID) (*proofing.FileAsset, error) {
	if caller.IsInternal() || caller.IsSystem() {
		asset, err := s.assetRepo.FindByID(ctx, assetID)
		if err != nil {
			return nil, err
		}
		if err := s.evaluator.Evaluate(caller, authz.OpRead, assetReadRef(asset)); err != nil {
			return nil, err
		}
		return asset, nil
	}

	if err := s.evaluator.Evaluate(caller, authz.OpRead, authz.RecordRef{
		Kind:           authz.KindFileAsset,
		OrganizationID: caller.OrganizationID,
	}); err != nil {
		return nil, err
	}
	asset, err := s.assetRepo.FindByIDForOrg(ctx, caller.OrganizationID, assetID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Evaluate(caller, authz.OpRead, assetReadRef(asset)); err != nil {
		return nil, shared.ErrNotFound
	}
	return asset, nil
}

func assetReadRef(a *proofing.FileAsset) authz.RecordRef {
	return authz.RecordRef{
		Kind:           authz.KindFileAsset,
		OrganizationID: a.OrganizationID,
		FileType:       a.FileType,
	}
}

// authorizeApproval runs the approval transition through the policy evaluator
// with the asset's actual state, so the customer carve-out sees the real
// from-status.
func (s *Service) authorizeApproval(caller identity.PrincipalContext, asset *proofing.FileAsset, to proofing.ApprovalStatus, reason string) error {
	var from proofing.ApprovalStatus
	if asset.ApprovalStatus != nil {
		from = *asset.ApprovalStatus
	}
	return s.evaluator.Evaluate(caller, authz.OpApproveProof, authz.RecordRef{
		Kind:           authz.KindFileAsset,
		OrganizationID: asset.OrganizationID,
		FileType:       asset.FileType,
		Approval: &authz.ApprovalChange{
			From:   from,
			To:     to,
			Reason: reason,
		},
	})
}

func toFileAssetInfo(a *proofing.FileAsset) *FileAssetInfo {
	info := &FileAssetInfo{
		ID:               a.ID,
		OrganizationID:   a.OrganizationID,
		ProjectID:        a.ProjectID,
		FileName:         a.FileName,
		FileType:         a.FileType.String(),
		StorageKey:       a.StorageKey,
		VersionNumber:    a.VersionNumber,
		IsCurrentVersion: a.IsCurrentVersion,
		ParentID:         a.ParentID,
		RejectionReason:  a.RejectionReason,
		ApprovedAt:       a.ApprovedAt,
		RejectedAt:       a.RejectedAt,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
	if a.ApprovalStatus != nil {
		info.ApprovalStatus = a.ApprovalStatus.String()
	}
	return info
}
