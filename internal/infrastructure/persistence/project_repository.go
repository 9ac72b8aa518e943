package persistence

import (
	"context"
	"errors"

	"github.com/packops/backend/internal/domain/project"
	"github.com/packops/backend/internal/domain/shared"
	"github.com/packops/backend/internal/infrastructure/persistence/models"
	"github.com/packops/backend/internal/infrastructure/persistence/orgscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProjectRepository implements project.Repository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project by its ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	var model models.ProjectModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForOrg finds a project by ID within an organization
func (r *GormProjectRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*project.Project, error) {
	var model models.ProjectModel
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

// FindAll finds all projects with filtering
func (r *GormProjectRepository) FindAll(ctx context.Context, filter shared.Filter) ([]project.Project, error) {
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{})
	return r.find(query, filter)
}

// FindAllForOrg finds an organization's projects with filtering
func (r *GormProjectRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]project.Project, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ProjectModel{}).
		Scopes(orgscope.Scope(orgID))
	return r.find(query, filter)
}

func (r *GormProjectRepository) find(query *gorm.DB, filter shared.Filter) ([]project.Project, error) {
	query = r.applyFilter(query, filter)
	query = applyPagination(query, filter, ProjectSortFields)

	var modelList []models.ProjectModel
	if err := query.Find(&modelList).Error; err != nil {
		return nil, err
	}
	projects := make([]project.Project, 0, len(modelList))
	for i := range modelList {
		projects = append(projects, *modelList[i].ToDomain())
	}
	return projects, nil
}

// Save creates or updates a project
func (r *GormProjectRepository) Save(ctx context.Context, p *project.Project) error {
	model := models.ProjectModelFromDomain(p)
	return r.db.WithContext(ctx).Save(model).Error
}

// Count counts projects matching the filter
func (r *GormProjectRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{})
	return r.count(query, filter)
}

// CountForOrg counts an organization's projects matching the filter
func (r *GormProjectRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ProjectModel{}).
		Scopes(orgscope.Scope(orgID))
	return r.count(query, filter)
}

func (r *GormProjectRepository) count(query *gorm.DB, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(query, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormProjectRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	return query
}
