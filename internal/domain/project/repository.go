package project

import (
	"context"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists projects
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Project, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Project, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Project, error)
	Save(ctx context.Context, p *Project) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)
}
