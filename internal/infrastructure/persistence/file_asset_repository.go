package persistence

import (
	"context"
	"errors"

	"github.com/packops/backend/internal/domain/proofing"
	"github.com/packops/backend/internal/domain/shared"
	"github.com/packops/backend/internal/infrastructure/persistence/models"
	"github.com/packops/backend/internal/infrastructure/persistence/orgscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFileAssetRepository implements proofing.FileAssetRepository using GORM
type GormFileAssetRepository struct {
	db *gorm.DB
}

// NewGormFileAssetRepository creates a new GormFileAssetRepository
func NewGormFileAssetRepository(db *gorm.DB) *GormFileAssetRepository {
	return &GormFileAssetRepository{db: db}
}

// FindByID finds a file asset by its ID
func (r *GormFileAssetRepository) FindByID(ctx context.Context, id uuid.UUID) (*proofing.FileAsset, error) {
	var model models.FileAssetModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForOrg finds a file asset by ID within an organization
func (r *GormFileAssetRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*proofing.FileAsset, error) {
	var model models.FileAssetModel
	if err := r.db.WithContext(ctx).
		Scopes(orgscope.Scope(orgID)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all file assets with filtering
func (r *GormFileAssetRepository) FindAll(ctx context.Context, filter proofing.FileAssetFilter) ([]proofing.FileAsset, error) {
	query := r.db.WithContext(ctx).Model(&models.FileAssetModel{})
	return r.find(query, filter)
}

// FindAllForOrg finds an organization's file assets with filtering
func (r *GormFileAssetRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter proofing.FileAssetFilter) ([]proofing.FileAsset, error) {
	query := r.db.WithContext(ctx).
		Model(&models.FileAssetModel{}).
		Scopes(orgscope.Scope(orgID))
	return r.find(query, filter)
}

// FindChain returns every version in the chain containing the given asset,
// ordered by version number ascending. The chain is walked through the
// parent links with a recursive CTE in both directions.
func (r *GormFileAssetRepository) FindChain(ctx context.Context, orgID, assetID uuid.UUID) ([]proofing.FileAsset, error) {
	var modelList []models.FileAssetModel
	chainSQL := `
		WITH RECURSIVE ancestors AS (
			SELECT * FROM file_assets WHERE id = ? AND organization_id = ?
			UNION ALL
			SELECT fa.* FROM file_assets fa
			JOIN ancestors a ON fa.id = a.parent_id
		), descendants AS (
			SELECT * FROM file_assets WHERE id = ? AND organization_id = ?
			UNION ALL
			SELECT fa.* FROM file_assets fa
			JOIN descendants d ON fa.parent_id = d.id
		)
		SELECT DISTINCT * FROM (
			SELECT * FROM ancestors UNION SELECT * FROM descendants
		) chain ORDER BY version_number ASC`
	if err := r.db.WithContext(ctx).
		Raw(chainSQL, assetID, orgID, assetID, orgID).
		Scan(&modelList).Error; err != nil {
		return nil, err
	}
	if len(modelList) == 0 {
		return nil, shared.ErrNotFound
	}
	assets := make([]proofing.FileAsset, 0, len(modelList))
	for i := range modelList {
		assets = append(assets, *modelList[i].ToDomain())
	}
	return assets, nil
}

// Save creates or updates a file asset
func (r *GormFileAssetRepository) Save(ctx context.Context, a *proofing.FileAsset) error {
	model := models.FileAssetModelFromDomain(a)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithEvent saves the asset and appends the audit event in one
// transaction. A nil event saves the asset alone.
func (r *GormFileAssetRepository) SaveWithEvent(ctx context.Context, a *proofing.FileAsset, event *proofing.ApprovalEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.FileAssetModelFromDomain(a)
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		if event == nil {
			return nil
		}
		var eventModel models.ApprovalEventModel
		if err := eventModel.FromDomain(event); err != nil {
			return err
		}
		return tx.Create(&eventModel).Error
	})
}

// PromoteRevision atomically demotes the predecessor, inserts the new current
// version and appends the audit event. The demote is a compare-and-swap on
// the predecessor id with is_current_version still true; losing the race
// returns a concurrency conflict and inserts nothing.
func (r *GormFileAssetRepository) PromoteRevision(ctx context.Context, predecessor, revision *proofing.FileAsset, event *proofing.ApprovalEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		demoted := models.FileAssetModelFromDomain(predecessor)
		result := tx.Model(&models.FileAssetModel{}).
			Where("id = ? AND is_current_version", predecessor.ID).
			Updates(map[string]interface{}{
				"is_current_version": false,
				"approval_status":    demoted.ApprovalStatus,
				"version":            demoted.Version,
				"updated_at":         demoted.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		revModel := models.FileAssetModelFromDomain(revision)
		if err := tx.Create(revModel).Error; err != nil {
			return err
		}

		if event == nil {
			return nil
		}
		var eventModel models.ApprovalEventModel
		if err := eventModel.FromDomain(event); err != nil {
			return err
		}
		return tx.Create(&eventModel).Error
	})
}

// Delete removes a file asset
func (r *GormFileAssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.FileAssetModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts file assets matching the filter
func (r *GormFileAssetRepository) Count(ctx context.Context, filter proofing.FileAssetFilter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.FileAssetModel{})
	return r.count(query, filter)
}

// CountForOrg counts an organization's file assets matching the filter
func (r *GormFileAssetRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter proofing.FileAssetFilter) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.FileAssetModel{}).
		Scopes(orgscope.Scope(orgID))
	return r.count(query, filter)
}

func (r *GormFileAssetRepository) find(query *gorm.DB, filter proofing.FileAssetFilter) ([]proofing.FileAsset, error) {
	query = r.applyFilter(query, filter)
	query = applyPagination(query, filter.Filter, FileAssetSortFields)

	var modelList []models.FileAssetModel
	if err := query.Find(&modelList).Error; err != nil {
		return nil, err
	}
	assets := make([]proofing.FileAsset, 0, len(modelList))
	for i := range modelList {
		assets = append(assets, *modelList[i].ToDomain())
	}
	return assets, nil
}

func (r *GormFileAssetRepository) count(query *gorm.DB, filter proofing.FileAssetFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormFileAssetRepository) applyFilter(query *gorm.DB, filter proofing.FileAssetFilter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("file_name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.FileType != nil {
		query = query.Where("file_type = ?", *filter.FileType)
	}
	if filter.ApprovalStatus != nil {
		query = query.Where("approval_status = ?", *filter.ApprovalStatus)
	}
	if filter.CurrentOnly {
		query = query.Where("is_current_version")
	}
	if filter.PendingSince != nil {
		query = query.Where("approval_status = ? AND created_at <= ?", proofing.ApprovalPending, *filter.PendingSince)
	}
	return query
}
