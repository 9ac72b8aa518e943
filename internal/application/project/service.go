package project

import (
	"context"

	"github.com/packops/backend/internal/domain/authz"
	"github.com/packops/backend/internal/domain/identity"
	"github.com/packops/backend/internal/domain/project"
	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service manages project lifecycle operations
type Service struct {
	projectRepo project.Repository
	orgRepo     identity.OrganizationRepository
	evaluator   *authz.Evaluator
	logger      *zap.Logger
}

// NewService creates a new project service
func NewService(
	projectRepo project.Repository,
	orgRepo identity.OrganizationRepository,
	evaluator *authz.Evaluator,
	logger *zap.Logger,
) *Service {
	return &Service{
		projectRepo: projectRepo,
		orgRepo:     orgRepo,
		evaluator:   evaluator,
		logger:      logger,
	}
}

// Create creates a project for a customer organization
func (s *Service) Create(ctx context.Context, caller identity.PrincipalContext, input CreateProjectInput) (*ProjectInfo, error) {
	if err := s.evaluator.Evaluate(caller, authz.OpCreate, authz.RecordRef{
		Kind:           authz.KindProject,
		OrganizationID: input.OrganizationID,
	}); err != nil {
		return nil, err
	}

	org, err := s.orgRepo.FindByID(ctx, input.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org.Kind != identity.OrgKindCustomer {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Projects belong to customer organizations")
	}

	p, err := project.NewProject(org.ID, caller.PrincipalID, input.Name, input.Description)
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.Save(ctx, p); err != nil {
		s.logger.Error("Failed to save project", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Project created",
		zap.String("project_id", p.ID.String()),
		zap.String("organization_id", p.OrganizationID.String()),
		zap.String("name", p.Name))

	return toProjectInfo(p), nil
}

// Get returns one project visible to the caller
func (s *Service) Get(ctx context.Context, caller identity.PrincipalContext, id uuid.UUID) (*ProjectInfo, error) {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Evaluate(caller, authz.OpRead, authz.RecordRef{
		Kind:           authz.KindProject,
		OrganizationID: p.OrganizationID,
	}); err != nil {
		return nil, err
	}
	return toProjectInfo(p), nil
}

// List returns projects visible to the caller. Customers are constrained to
// their own organization regardless of the filter.
func (s *Service) List(ctx context.Context, caller identity.PrincipalContext, filter shared.Filter) ([]ProjectInfo, error) {
	var (
		projects []project.Project
		err      error
	)
	if caller.IsInternal() || caller.IsSystem() {
		projects, err = s.projectRepo.FindAll(ctx, filter)
	} else {
		projects, err = s.projectRepo.FindAllForOrg(ctx, caller.OrganizationID, filter)
	}
	if err != nil {
		return nil, err
	}

	infos := make([]ProjectInfo, 0, len(projects))
	for i := range projects {
		infos = append(infos, *toProjectInfo(&projects[i]))
	}
	return infos, nil
}

// Hold places a project on hold
func (s *Service) Hold(ctx context.Context, caller identity.PrincipalContext, id uuid.UUID) (*ProjectInfo, error) {
	return s.transition(ctx, caller, id, "hold", func(p *project.Project) error { return p.Hold() })
}

// Resume reactivates a held project
func (s *Service) Resume(ctx context.Context, caller identity.PrincipalContext, id uuid.UUID) (*ProjectInfo, error) {
	return s.transition(ctx, caller, id, "resume", func(p *project.Project) error { return p.Resume() })
}

// Complete marks a project as completed
func (s *Service) Complete(ctx context.Context, caller identity.PrincipalContext, id uuid.UUID) (*ProjectInfo, error) {
	return s.transition(ctx, caller, id, "complete", func(p *project.Project) error { return p.Complete() })
}

// Cancel cancels a project
func (s *Service) Cancel(ctx context.Context, caller identity.PrincipalContext, id uuid.UUID) (*ProjectInfo, error) {
	return s.transition(ctx, caller, id, "cancel", func(p *project.Project) error { return p.Cancel() })
}

func (s *Service) transition(ctx context.Context, caller identity.PrincipalContext, id uuid.UUID, action string, fn func(*project.Project) error) (*ProjectInfo, error) {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Evaluate(caller, authz.OpUpdate, authz.RecordRef{
		Kind:           authz.KindProject,
		OrganizationID: p.OrganizationID,
	}); err != nil {
		return nil, err
	}

	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Project transitioned",
		zap.String("project_id", p.ID.String()),
		zap.String("action", action),
		zap.String("status", p.Status.String()))

	return toProjectInfo(p), nil
}

func toProjectInfo(p *project.Project) *ProjectInfo {
	return &ProjectInfo{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		Name:           p.Name,
		Description:    p.Description,
		Status:         p.Status.String(),
		CompletedAt:    p.CompletedAt,
		CancelledAt:    p.CancelledAt,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
