package identity

import (
	"strings"

	"github.com/packops/backend/internal/domain/shared"
)

// OrganizationKind distinguishes the operating company from its customers
type OrganizationKind string

const (
	OrgKindInternal OrganizationKind = "internal" // The packaging company itself
	OrgKindCustomer OrganizationKind = "customer" // A customer tenant
)

// IsValid checks if the kind is a valid OrganizationKind
func (k OrganizationKind) IsValid() bool {
	return k == OrgKindInternal || k == OrgKindCustomer
}

// String returns the string representation of OrganizationKind
func (k OrganizationKind) String() string {
	return string(k)
}

// Contact holds organization contact details
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Organization is the isolation boundary for all customer-scoped data.
// Every operational entity references exactly one Organization.
type Organization struct {
	shared.BaseAggregateRoot
	Name    string
	Kind    OrganizationKind
	Contact Contact
}

// NewOrganization creates a new organization
func NewOrganization(name string, kind OrganizationKind, contact Contact) (*Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION_NAME", "Organization name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION_NAME", "Organization name cannot exceed 200 characters")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION_KIND", "Organization kind must be internal or customer")
	}

	org := &Organization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Kind:              kind,
		Contact:           contact,
	}

	org.AddDomainEvent(NewOrganizationCreatedEvent(org))

	return org, nil
}

// Rename changes the organization name
func (o *Organization) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_ORGANIZATION_NAME", "Organization name cannot be empty")
	}
	o.Name = name
	o.IncrementVersion()
	return nil
}

// UpdateContact replaces the organization contact details
func (o *Organization) UpdateContact(contact Contact) {
	o.Contact = contact
	o.IncrementVersion()
}

// IsInternal returns true for the operating company's organization
func (o *Organization) IsInternal() bool {
	return o.Kind == OrgKindInternal
}
