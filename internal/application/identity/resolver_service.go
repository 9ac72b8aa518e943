package identity

import (
	"context"
	"strings"
	"time"

	"github.com/packops/backend/internal/domain/identity"
	"github.com/packops/backend/internal/domain/shared"
	"github.com/packops/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// ResolverCacheTTL bounds how long a cached identity mapping may be served
// before it is re-read from the store. Role changes and deactivations also
// invalidate eagerly, so the TTL is a backstop.
const ResolverCacheTTL = 5 * time.Minute

// ResolverService maps an external identity (auth provider subject) to the
// principal context every operation requires. The mapping is strict: no
// match, an ambiguous match or an inactive principal all resolve to
// Unauthenticated. There is no anonymous or default-organization fallback.
type ResolverService struct {
	principalRepo identity.PrincipalRepository
	orgRepo       identity.OrganizationRepository
	cache         cache.IdentityCache
	logger        *zap.Logger
}

// NewResolverService creates a new identity resolver
func NewResolverService(
	principalRepo identity.PrincipalRepository,
	orgRepo identity.OrganizationRepository,
	identityCache cache.IdentityCache,
	logger *zap.Logger,
) *ResolverService {
	return &ResolverService{
		principalRepo: principalRepo,
		orgRepo:       orgRepo,
		cache:         identityCache,
		logger:        logger,
	}
}

// Resolve returns the principal context for an external identity
func (s *ResolverService) Resolve(ctx context.Context, externalIdentity string) (identity.PrincipalContext, error) {
	externalIdentity = strings.TrimSpace(externalIdentity)
	if externalIdentity == "" {
		return identity.PrincipalContext{}, shared.ErrUnauthenticated
	}

	if cached, found, err := s.cache.Get(ctx, externalIdentity); err == nil && found {
		return *cached, nil
	} else if err != nil {
		// A cache failure degrades to a store read, never to a denial
		s.logger.Warn("Identity cache read failed", zap.Error(err))
	}

	pc, err := s.resolveFromStore(ctx, externalIdentity)
	if err != nil {
		return identity.PrincipalContext{}, err
	}

	if err := s.cache.Set(ctx, externalIdentity, pc, ResolverCacheTTL); err != nil {
		s.logger.Warn("Identity cache write failed", zap.Error(err))
	}

	return pc, nil
}

// ResolvePrincipal builds the principal context for an already-loaded
// principal, validating its role against the organization kind.
func (s *ResolverService) ResolvePrincipal(ctx context.Context, p *identity.Principal) (identity.PrincipalContext, error) {
	org, err := s.orgRepo.FindByID(ctx, p.OrganizationID)
	if err != nil {
		s.logger.Error("Organization missing for principal",
			zap.String("principal_id", p.ID.String()),
			zap.String("organization_id", p.OrganizationID.String()))
		return identity.PrincipalContext{}, shared.ErrUnauthenticated
	}

	if err := identity.ValidateRoleForKind(p.Role, org.Kind); err != nil {
		return identity.PrincipalContext{}, shared.ErrInvalidRole
	}

	return identity.PrincipalContext{
		PrincipalID:    p.ID,
		OrganizationID: p.OrganizationID,
		Role:           p.Role,
		OrgKind:        org.Kind,
	}, nil
}

// Invalidate drops the cached mapping for an external identity. Called when
// a principal's role changes or the principal is deactivated.
func (s *ResolverService) Invalidate(ctx context.Context, externalIdentity string) {
	if externalIdentity == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, externalIdentity); err != nil {
		s.logger.Warn("Identity cache invalidation failed", zap.Error(err))
	}
}

func (s *ResolverService) resolveFromStore(ctx context.Context, externalIdentity string) (identity.PrincipalContext, error) {
	p, err := s.principalRepo.FindByExternalIdentity(ctx, externalIdentity)
	if err != nil {
		s.logger.Warn("No principal for external identity")
		return identity.PrincipalContext{}, shared.ErrUnauthenticated
	}

	if !p.IsActive() {
		s.logger.Warn("Inactive principal attempted access",
			zap.String("principal_id", p.ID.String()))
		return identity.PrincipalContext{}, shared.ErrUnauthenticated
	}

	return s.ResolvePrincipal(ctx, p)
}
