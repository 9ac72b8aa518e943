package models

import (
	"time"

	"github.com/packops/backend/internal/domain/identity"
)

// OrganizationModel is the persistence model for the Organization aggregate
type OrganizationModel struct {
	AggregateModel
	Name         string                    `gorm:"type:varchar(200);not null"`
	Kind         identity.OrganizationKind `gorm:"type:varchar(20);not null;index"`
	ContactName  string                    `gorm:"type:varchar(200)"`
	ContactEmail string                    `gorm:"type:varchar(200)"`
	ContactPhone string                    `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (OrganizationModel) TableName() string {
	return "organizations"
}

// ToDomain converts the persistence model to a domain Organization
func (m *OrganizationModel) ToDomain() *identity.Organization {
	return &identity.Organization{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Kind:              m.Kind,
		Contact: identity.Contact{
			Name:  m.ContactName,
			Email: m.ContactEmail,
			Phone: m.ContactPhone,
		},
	}
}

// FromDomain populates the persistence model from a domain Organization
func (m *OrganizationModel) FromDomain(org *identity.Organization) {
	m.FromDomainAggregateRoot(org.BaseAggregateRoot)
	m.Name = org.Name
	m.Kind = org.Kind
	m.ContactName = org.Contact.Name
	m.ContactEmail = org.Contact.Email
	m.ContactPhone = org.Contact.Phone
}

// PrincipalModel is the persistence model for the Principal aggregate
type PrincipalModel struct {
	OrgAggregateModel
	Username         string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	PasswordHash     string                   `gorm:"type:varchar(255);not null"`
	Role             identity.Role            `gorm:"type:varchar(20);not null"`
	ExternalIdentity string                   `gorm:"type:varchar(255);not null;uniqueIndex"`
	Email            string                   `gorm:"type:varchar(200)"`
	DisplayName      string                   `gorm:"type:varchar(200)"`
	Status           identity.PrincipalStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt      *time.Time
	LastLoginIP      string `gorm:"type:varchar(45)"`
	FailedAttempts   int    `gorm:"not null;default:0"`
	LockedUntil      *time.Time
}

// TableName returns the table name for GORM
func (PrincipalModel) TableName() string {
	return "principals"
}

// ToDomain converts the persistence model to a domain Principal
func (m *PrincipalModel) ToDomain() *identity.Principal {
	return &identity.Principal{
		OrgAggregateRoot: m.ToDomainOrgAggregateRoot(),
		Username:         m.Username,
		PasswordHash:     m.PasswordHash,
		Role:             m.Role,
		ExternalIdentity: m.ExternalIdentity,
		Email:            m.Email,
		DisplayName:      m.DisplayName,
		Status:           m.Status,
		LastLoginAt:      m.LastLoginAt,
		LastLoginIP:      m.LastLoginIP,
		FailedAttempts:   m.FailedAttempts,
		LockedUntil:      m.LockedUntil,
	}
}

// FromDomain populates the persistence model from a domain Principal
func (m *PrincipalModel) FromDomain(p *identity.Principal) {
	m.FromDomainOrgAggregateRoot(p.OrgAggregateRoot)
	m.Username = p.Username
	m.PasswordHash = p.PasswordHash
	m.Role = p.Role
	m.ExternalIdentity = p.ExternalIdentity
	m.Email = p.Email
	m.DisplayName = p.DisplayName
	m.Status = p.Status
	m.LastLoginAt = p.LastLoginAt
	m.LastLoginIP = p.LastLoginIP
	m.FailedAttempts = p.FailedAttempts
	m.LockedUntil = p.LockedUntil
}

// PrincipalModelFromDomain creates a persistence model from a domain Principal
func PrincipalModelFromDomain(p *identity.Principal) *PrincipalModel {
	var m PrincipalModel
	m.FromDomain(p)
	return &m
}

// OrganizationModelFromDomain creates a persistence model from a domain Organization
func OrganizationModelFromDomain(org *identity.Organization) *OrganizationModel {
	var m OrganizationModel
	m.FromDomain(org)
	return &m
}
