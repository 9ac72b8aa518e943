package identity

import (
	"context"
	"strings"

	"github.com/packops/backend/internal/domain/authz"
	"github.com/packops/backend/internal/domain/identity"
	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrganizationService manages organizations and their principals. Creation is
// an administrative operation so every method takes the caller's context and
// runs it through the policy evaluator first.
type OrganizationService struct {
	orgRepo       identity.OrganizationRepository
	principalRepo identity.PrincipalRepository
	resolver      *ResolverService
	evaluator     *authz.Evaluator
	logger        *zap.Logger
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(
	orgRepo identity.OrganizationRepository,
	principalRepo identity.PrincipalRepository,
	resolver *ResolverService,
	evaluator *authz.Evaluator,
	logger *zap.Logger,
) *OrganizationService {
	return &OrganizationService{
		orgRepo:       orgRepo,
		principalRepo: principalRepo,
		resolver:      resolver,
		evaluator:     evaluator,
		logger:        logger,
	}
}

// CreateOrganization creates a new organization
func (s *OrganizationService) CreateOrganization(ctx context.Context, caller identity.PrincipalContext, input CreateOrganizationInput) (*OrganizationInfo, error) {
	if err := s.evaluator.Evaluate(caller, authz.OpCreate, authz.RecordRef{Kind: authz.KindOrganization}); err != nil {
		return nil, err
	}

	kind := identity.OrganizationKind(strings.ToLower(strings.TrimSpace(input.Kind)))
	org, err := identity.NewOrganization(input.Name, kind, identity.Contact{
		Name:  input.ContactName,
		Email: input.ContactEmail,
		Phone: input.ContactPhone,
	})
	if err != nil {
		return nil, err
	}

	if err := s.orgRepo.Save(ctx, org); err != nil {
		s.logger.Error("Failed to save organization", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Organization created",
		zap.String("organization_id", org.ID.String()),
		zap.String("name", org.Name),
		zap.String("kind", org.Kind.String()))

	return toOrganizationInfo(org), nil
}

// GetOrganization returns one organization. Customers only see their own.
func (s *OrganizationService) GetOrganization(ctx context.Context, caller identity.PrincipalContext, id uuid.UUID) (*OrganizationInfo, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Evaluate(caller, authz.OpRead, authz.RecordRef{
		Kind:           authz.KindOrganization,
		OrganizationID: org.ID,
	}); err != nil {
		return nil, err
	}
	return toOrganizationInfo(org), nil
}

// ListOrganizations returns organizations visible to the caller
func (s *OrganizationService) ListOrganizations(ctx context.Context, caller identity.PrincipalContext, filter shared.Filter) ([]OrganizationInfo, error) {
	if !caller.IsInternal() && !caller.IsSystem() {
		// Customers see exactly their own organization
		org, err := s.orgRepo.FindByID(ctx, caller.OrganizationID)
		if err != nil {
			return nil, err
		}
		return []OrganizationInfo{*toOrganizationInfo(org)}, nil
	}

	orgs, err := s.orgRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	infos := make([]OrganizationInfo, 0, len(orgs))
	for i := range orgs {
		infos = append(infos, *toOrganizationInfo(&orgs[i]))
	}
	return infos, nil
}

// CreatePrincipal creates a principal in an organization. The role must be
// valid for the organization's kind.
func (s *OrganizationService) CreatePrincipal(ctx context.Context, caller identity.PrincipalContext, input CreatePrincipalInput) (*PrincipalInfo, error) {
	if err := s.evaluator.Evaluate(caller, authz.OpCreate, authz.RecordRef{
		Kind:           authz.KindPrincipal,
		OrganizationID: input.OrganizationID,
	}); err != nil {
		return nil, err
	}

	org, err := s.orgRepo.FindByID(ctx, input.OrganizationID)
	if err != nil {
		return nil, err
	}

	role := identity.Role(strings.ToLower(strings.TrimSpace(input.Role)))
	p, err := identity.NewPrincipal(org.ID, org.Kind, role, input.Username, input.Password, input.ExternalIdentity)
	if err != nil {
		return nil, err
	}
	if input.Email != "" {
		if err := p.SetEmail(input.Email); err != nil {
			return nil, err
		}
	}
	if input.DisplayName != "" {
		p.SetDisplayName(input.DisplayName)
	}

	if existing, err := s.principalRepo.FindByUsername(ctx, p.Username); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}

	if err := s.principalRepo.Save(ctx, p); err != nil {
		s.logger.Error("Failed to save principal", zap.Error(err))
		return nil, err
	}

	// A stale resolver entry for this external identity must not survive
	s.resolver.Invalidate(ctx, p.ExternalIdentity)

	s.logger.Info("Principal created",
		zap.String("principal_id", p.ID.String()),
		zap.String("organization_id", org.ID.String()),
		zap.String("username", p.Username),
		zap.String("role", p.Role.String()))

	return toPrincipalInfo(p, org.Kind), nil
}

// ListPrincipals returns the principals of one organization
func (s *OrganizationService) ListPrincipals(ctx context.Context, caller identity.PrincipalContext, orgID uuid.UUID, filter shared.Filter) ([]PrincipalInfo, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Evaluate(caller, authz.OpRead, authz.RecordRef{
		Kind:           authz.KindPrincipal,
		OrganizationID: org.ID,
	}); err != nil {
		return nil, err
	}

	principals, err := s.principalRepo.FindAllForOrg(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	infos := make([]PrincipalInfo, 0, len(principals))
	for i := range principals {
		infos = append(infos, *toPrincipalInfo(&principals[i], org.Kind))
	}
	return infos, nil
}

// DeactivatePrincipal deactivates a principal and invalidates its cached
// identity resolution
func (s *OrganizationService) DeactivatePrincipal(ctx context.Context, caller identity.PrincipalContext, principalID uuid.UUID) error {
	p, err := s.principalRepo.FindByID(ctx, principalID)
	if err != nil {
		return err
	}
	if err := s.evaluator.Evaluate(caller, authz.OpUpdate, authz.RecordRef{
		Kind:           authz.KindPrincipal,
		OrganizationID: p.OrganizationID,
	}); err != nil {
		return err
	}

	p.Deactivate()
	if err := s.principalRepo.Save(ctx, p); err != nil {
		return err
	}

	s.resolver.Invalidate(ctx, p.ExternalIdentity)

	s.logger.Info("Principal deactivated",
		zap.String("principal_id", p.ID.String()),
		zap.String("organization_id", p.OrganizationID.String()))
	return nil
}

func toOrganizationInfo(org *identity.Organization) *OrganizationInfo {
	return &OrganizationInfo{
		ID:           org.ID,
		Name:         org.Name,
		Kind:         org.Kind.String(),
		ContactName:  org.Contact.Name,
		ContactEmail: org.Contact.Email,
		ContactPhone: org.Contact.Phone,
		CreatedAt:    org.CreatedAt,
	}
}

func toPrincipalInfo(p *identity.Principal, kind identity.OrganizationKind) *PrincipalInfo {
	return &PrincipalInfo{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		Username:       p.Username,
		DisplayName:    p.DisplayName,
		Email:          p.Email,
		Role:           p.Role.String(),
		OrgKind:        kind.String(),
	}
}
