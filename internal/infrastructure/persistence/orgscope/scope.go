// Package orgscope provides organization-scoped database access for GORM.
//
// Every customer-scoped table carries an organization_id column. This package
// applies WHERE organization_id = ? filtering from the request context so a
// repository call can never return another organization's rows.
//
// Usage:
//
//	db := orgscope.NewOrgDB(gormDB)
//	scoped := db.WithContext(ctx) // applies the organization filter
//	scoped.Find(&invoices)        // WHERE organization_id = 'xxx' is auto-added
package orgscope

import (
	"context"
	"errors"

	"github.com/packops/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrOrganizationIDRequired is returned when organization_id is required but not in context
var ErrOrganizationIDRequired = errors.New("organization_id is required but not found in context")

// ErrInvalidOrganizationID is returned when organization_id format is invalid
var ErrInvalidOrganizationID = errors.New("invalid organization_id format")

// Scope applies organization filtering to GORM queries
func Scope(orgID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("organization_id = ?", orgID)
	}
}

// ScopeString applies organization filtering using a string organization ID
func ScopeString(orgID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("organization_id = ?", orgID)
	}
}

// OrgDB wraps GORM DB with automatic organization scoping
type OrgDB struct {
	db       *gorm.DB
	required bool
}

// NewOrgDB creates a new OrgDB that requires an organization in context
func NewOrgDB(db *gorm.DB) *OrgDB {
	return &OrgDB{db: db, required: true}
}

// DB returns the underlying GORM DB without organization scoping.
// Use with caution, this bypasses isolation.
func (o *OrgDB) DB() *gorm.DB {
	return o.db
}

// WithContext returns a GORM DB scoped to the organization from context. If
// no organization is resolvable and scoping is required, the returned DB
// errors on any operation instead of running unscoped.
func (o *OrgDB) WithContext(ctx context.Context) *gorm.DB {
	orgID := logger.GetOrganizationID(ctx)

	if orgID == "" {
		if o.required {
			db := o.db.WithContext(ctx)
			_ = db.AddError(ErrOrganizationIDRequired)
			return db
		}
		return o.db.WithContext(ctx)
	}

	if _, err := uuid.Parse(orgID); err != nil {
		db := o.db.WithContext(ctx)
		_ = db.AddError(ErrInvalidOrganizationID)
		return db
	}

	return o.db.WithContext(ctx).Scopes(ScopeString(orgID))
}

// ForOrg returns a GORM DB scoped to a specific organization ID
func (o *OrgDB) ForOrg(ctx context.Context, orgID uuid.UUID) *gorm.DB {
	if orgID == uuid.Nil {
		db := o.db.WithContext(ctx)
		_ = db.AddError(ErrOrganizationIDRequired)
		return db
	}
	return o.db.WithContext(ctx).Scopes(Scope(orgID))
}

// Transaction executes a function within a transaction scoped to the
// organization from context
func (o *OrgDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	orgID := logger.GetOrganizationID(ctx)

	if orgID == "" && o.required {
		return ErrOrganizationIDRequired
	}

	return o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if orgID != "" {
			tx = tx.Scopes(ScopeString(orgID))
		}
		return fn(tx)
	})
}

// Unscoped returns the underlying DB without organization scoping. Reserved
// for system-level operations and migrations.
func (o *OrgDB) Unscoped() *gorm.DB {
	return o.db
}

// SetRequired changes whether an organization in context is mandatory
func (o *OrgDB) SetRequired(required bool) *OrgDB {
	return &OrgDB{db: o.db, required: required}
}
