package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role represents a principal's role within its organization
type Role string

const (
	RoleAdmin    Role = "admin"    // Internal administrator, full access plus corrections
	RoleStaff    Role = "staff"    // Internal operator, cross-tenant read, operational writes
	RoleCustomer Role = "customer" // Customer user, scoped to its own organization
	RoleSystem   Role = "system"   // Automation principal for scheduled triggers and webhooks
)

// IsValid checks if the role is a valid Role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCustomer, RoleSystem:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// ValidateRoleForKind rejects role/organization-kind combinations that have no
// defined semantics. A customer role inside the internal organization is not a
// defined state, and internal roles never belong to customer tenants.
func ValidateRoleForKind(role Role, kind OrganizationKind) error {
	switch kind {
	case OrgKindInternal:
		if role == RoleCustomer {
			return shared.ErrInvalidRole
		}
	case OrgKindCustomer:
		if role != RoleCustomer {
			return shared.ErrInvalidRole
		}
	default:
		return shared.NewDomainError("INVALID_ORGANIZATION_KIND", "Organization kind must be internal or customer")
	}
	return nil
}

// PrincipalStatus represents the status of a principal
type PrincipalStatus string

const (
	PrincipalStatusActive      PrincipalStatus = "active"
	PrincipalStatusLocked      PrincipalStatus = "locked"
	PrincipalStatusDeactivated PrincipalStatus = "deactivated"
)

// Password cost for bcrypt
const bcryptCost = 12

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{2,49}$`)

// Principal is an authenticated actor. Its OrganizationID is immutable after
// creation: tenant isolation depends on this, so moving a principal between
// organizations is always delete-and-recreate, never an update.
type Principal struct {
	shared.OrgAggregateRoot
	Username         string
	Email            string
	DisplayName      string
	PasswordHash     string
	Role             Role
	ExternalIdentity string // Unique external identity (auth provider subject)
	Status           PrincipalStatus
	LastLoginAt      *time.Time
	LastLoginIP      string
	FailedAttempts   int
	LockedUntil      *time.Time
}

// NewPrincipal creates a new principal bound to an organization. The caller
// supplies the organization's kind so the role combination can be validated.
func NewPrincipal(orgID uuid.UUID, orgKind OrganizationKind, role Role, username, password, externalIdentity string) (*Principal, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	if err := ValidateRoleForKind(role, orgKind); err != nil {
		return nil, err
	}
	username = strings.ToLower(strings.TrimSpace(username))
	if !usernamePattern.MatchString(username) {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username must be 3-50 characters of lowercase letters, digits, dot, dash or underscore")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	externalIdentity = strings.TrimSpace(externalIdentity)
	if externalIdentity == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_IDENTITY", "External identity cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	p := &Principal{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Username:         username,
		PasswordHash:     string(hash),
		Role:             role,
		ExternalIdentity: externalIdentity,
		Status:           PrincipalStatusActive,
	}

	p.AddDomainEvent(NewPrincipalCreatedEvent(p))

	return p, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	return nil
}

// SetEmail sets the principal's email
func (p *Principal) SetEmail(email string) error {
	email = strings.TrimSpace(email)
	if email != "" && !strings.Contains(email, "@") {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	p.Email = email
	p.IncrementVersion()
	return nil
}

// SetDisplayName sets the principal's display name
func (p *Principal) SetDisplayName(name string) {
	p.DisplayName = strings.TrimSpace(name)
	p.IncrementVersion()
}

// VerifyPassword checks the password against the stored hash
func (p *Principal) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the password hash
func (p *Principal) ChangePassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	p.PasswordHash = string(hash)
	p.IncrementVersion()
	return nil
}

// RecordLogin records a successful login and resets the failure counter
func (p *Principal) RecordLogin(ip string) {
	now := time.Now()
	p.LastLoginAt = &now
	p.LastLoginIP = ip
	p.FailedAttempts = 0
	p.LockedUntil = nil
	p.IncrementVersion()
}

// RecordFailedLogin increments the failure counter, locking after maxAttempts
func (p *Principal) RecordFailedLogin(maxAttempts int, lockDuration time.Duration) {
	p.FailedAttempts++
	if maxAttempts > 0 && p.FailedAttempts >= maxAttempts {
		until := time.Now().Add(lockDuration)
		p.Status = PrincipalStatusLocked
		p.LockedUntil = &until
	}
	p.IncrementVersion()
}

// Deactivate deactivates the principal
func (p *Principal) Deactivate() {
	p.Status = PrincipalStatusDeactivated
	p.IncrementVersion()
}

// IsActive returns true if the principal may authenticate
func (p *Principal) IsActive() bool {
	if p.Status == PrincipalStatusLocked && p.LockedUntil != nil && time.Now().After(*p.LockedUntil) {
		return true // lock expired
	}
	return p.Status == PrincipalStatusActive
}

// PrincipalContext is the resolved identity passed into every core operation.
// Operations never read ambient state; the context travels explicitly.
type PrincipalContext struct {
	PrincipalID    uuid.UUID
	OrganizationID uuid.UUID
	Role           Role
	OrgKind        OrganizationKind
}

// IsInternal returns true when the principal belongs to the operating company
func (c PrincipalContext) IsInternal() bool {
	return c.OrgKind == OrgKindInternal
}

// IsSystem returns true for the automation principal
func (c PrincipalContext) IsSystem() bool {
	return c.Role == RoleSystem
}

// SystemPrincipal returns the context used by schedulers and webhook triggers.
// It carries no organization: system transitions are cross-tenant by design
// and individually restricted by the policy evaluator.
func SystemPrincipal() PrincipalContext {
	return PrincipalContext{
		Role:    RoleSystem,
		OrgKind: OrgKindInternal,
	}
}
