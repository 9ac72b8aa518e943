package identity

import (
	"context"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrganizationRepository persists organizations
type OrganizationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Organization, error)
	FindByKind(ctx context.Context, kind OrganizationKind) ([]Organization, error)
	Save(ctx context.Context, org *Organization) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// PrincipalRepository persists principals and the external-identity mapping.
// FindByExternalIdentity backs the identity resolver: the mapping is unique,
// and a miss means unauthenticated, never an empty-tenant fallback.
type PrincipalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Principal, error)
	FindByUsername(ctx context.Context, username string) (*Principal, error)
	FindByExternalIdentity(ctx context.Context, externalIdentity string) (*Principal, error)
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Principal, error)
	Save(ctx context.Context, p *Principal) error
	// Delete removes a principal. Changing tenancy is delete-and-recreate;
	// there is deliberately no update path for OrganizationID.
	Delete(ctx context.Context, id uuid.UUID) error
}
