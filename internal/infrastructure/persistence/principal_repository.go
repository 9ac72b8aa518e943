package persistence

import (
	"context"
	"errors"

	"github.com/packops/backend/internal/domain/identity"
	"github.com/packops/backend/internal/domain/shared"
	"github.com/packops/backend/internal/infrastructure/persistence/models"
	"github.com/packops/backend/internal/infrastructure/persistence/orgscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPrincipalRepository implements identity.PrincipalRepository using GORM
type GormPrincipalRepository struct {
	db *gorm.DB
}

// NewGormPrincipalRepository creates a new GormPrincipalRepository
func NewGormPrincipalRepository(db *gorm.DB) *GormPrincipalRepository {
	return &GormPrincipalRepository{db: db}
}

// FindByID finds a principal by its ID
func (r *GormPrincipalRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Principal, error) {
	var model models.PrincipalModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUsername finds a principal by username
func (r *GormPrincipalRepository) FindByUsername(ctx context.Context, username string) (*identity.Principal, error) {
	var model models.PrincipalModel
	if err := r.db.WithContext(ctx).First(&model, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalIdentity finds a principal by its external identity. The
// column is unique; a miss surfaces as NotFound and the resolver maps it to
// unauthenticated.
func (r *GormPrincipalRepository) FindByExternalIdentity(ctx context.Context, externalIdentity string) (*identity.Principal, error) {
	var model models.PrincipalModel
	if err := r.db.WithContext(ctx).First(&model, "external_identity = ?", externalIdentity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForOrg finds the principals of one organization with filtering
func (r *GormPrincipalRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]identity.Principal, error) {
	var modelList []models.PrincipalModel
	query := r.db.WithContext(ctx).
		Model(&models.PrincipalModel{}).
		Scopes(orgscope.Scope(orgID))

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("username ILIKE ? OR display_name ILIKE ?", pattern, pattern)
	}
	if role, ok := filter.Filters["role"]; ok {
		query = query.Where("role = ?", role)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	query = applyPagination(query, filter, PrincipalSortFields)
	if err := query.Find(&modelList).Error; err != nil {
		return nil, err
	}

	principals := make([]identity.Principal, 0, len(modelList))
	for i := range modelList {
		principals = append(principals, *modelList[i].ToDomain())
	}
	return principals, nil
}

// Save creates or updates a principal
func (r *GormPrincipalRepository) Save(ctx context.Context, p *identity.Principal) error {
	model := models.PrincipalModelFromDomain(p)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a principal
func (r *GormPrincipalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PrincipalModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
