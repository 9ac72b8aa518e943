package identity

import (
	"testing"
	"time"

	"github.com/packops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRoleForKind(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		kind    OrganizationKind
		wantErr bool
	}{
		{"admin in internal", RoleAdmin, OrgKindInternal, false},
		{"staff in internal", RoleStaff, OrgKindInternal, false},
		{"customer in customer", RoleCustomer, OrgKindCustomer, false},
		{"customer in internal", RoleCustomer, OrgKindInternal, true},
		{"admin in customer", RoleAdmin, OrgKindCustomer, true},
		{"staff in customer", RoleStaff, OrgKindCustomer, true},
		{"unknown kind", RoleAdmin, OrganizationKind("partner"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRoleForKind(tt.role, tt.kind)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewPrincipal(t *testing.T) {
	orgID := uuid.New()

	t.Run("creates active principal", func(t *testing.T) {
		p, err := NewPrincipal(orgID, OrgKindInternal, RoleStaff, "jdoe", "secret-pass-1", "auth0|abc123")
		require.NoError(t, err)

		assert.Equal(t, orgID, p.OrganizationID)
		assert.Equal(t, PrincipalStatusActive, p.Status)
		assert.Equal(t, "jdoe", p.Username)
		assert.NotEmpty(t, p.PasswordHash)
		assert.NotEqual(t, "secret-pass-1", p.PasswordHash)
	})

	t.Run("username normalized to lowercase", func(t *testing.T) {
		p, err := NewPrincipal(orgID, OrgKindInternal, RoleStaff, "  JDoe  ", "secret-pass-1", "auth0|abc")
		require.NoError(t, err)
		assert.Equal(t, "jdoe", p.Username)
	})

	t.Run("rejects role outside organization kind", func(t *testing.T) {
		_, err := NewPrincipal(orgID, OrgKindCustomer, RoleStaff, "jdoe", "secret-pass-1", "auth0|abc")
		assert.ErrorIs(t, err, shared.ErrInvalidRole)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewPrincipal(orgID, OrgKindInternal, RoleStaff, "jdoe", "short", "auth0|abc")
		assert.Error(t, err)
	})

	t.Run("rejects bad username", func(t *testing.T) {
		for _, username := range []string{"ab", "has space", "-leading", ""} {
			_, err := NewPrincipal(orgID, OrgKindInternal, RoleStaff, username, "secret-pass-1", "auth0|abc")
			assert.Error(t, err, username)
		}
	})

	t.Run("rejects empty external identity", func(t *testing.T) {
		_, err := NewPrincipal(orgID, OrgKindInternal, RoleStaff, "jdoe", "secret-pass-1", "  ")
		assert.Error(t, err)
	})
}

func TestPrincipal_Password(t *testing.T) {
	p, err := NewPrincipal(uuid.New(), OrgKindInternal, RoleStaff, "jdoe", "secret-pass-1", "auth0|abc")
	require.NoError(t, err)

	assert.True(t, p.VerifyPassword("secret-pass-1"))
	assert.False(t, p.VerifyPassword("wrong"))

	require.NoError(t, p.ChangePassword("another-pass-2"))
	assert.True(t, p.VerifyPassword("another-pass-2"))
	assert.False(t, p.VerifyPassword("secret-pass-1"))
}

func TestPrincipal_Lockout(t *testing.T) {
	newActive := func(t *testing.T) *Principal {
		p, err := NewPrincipal(uuid.New(), OrgKindCustomer, RoleCustomer, "acme.buyer", "secret-pass-1", "auth0|cust")
		require.NoError(t, err)
		return p
	}

	t.Run("locks after max attempts", func(t *testing.T) {
		p := newActive(t)
		for i := 0; i < 5; i++ {
			p.RecordFailedLogin(5, time.Hour)
		}

		assert.Equal(t, PrincipalStatusLocked, p.Status)
		assert.False(t, p.IsActive())
	})

	t.Run("expired lock allows login again", func(t *testing.T) {
		p := newActive(t)
		p.RecordFailedLogin(1, -time.Minute)

		assert.True(t, p.IsActive())
	})

	t.Run("successful login resets the counter", func(t *testing.T) {
		p := newActive(t)
		p.RecordFailedLogin(5, time.Hour)
		p.RecordFailedLogin(5, time.Hour)

		p.RecordLogin("203.0.113.7")
		assert.Equal(t, 0, p.FailedAttempts)
		assert.Nil(t, p.LockedUntil)
		require.NotNil(t, p.LastLoginAt)
	})

	t.Run("deactivated principal stays inactive", func(t *testing.T) {
		p := newActive(t)
		p.Deactivate()
		assert.False(t, p.IsActive())
	})
}

func TestSystemPrincipal(t *testing.T) {
	p := SystemPrincipal()

	assert.True(t, p.IsSystem())
	assert.True(t, p.IsInternal())
	assert.Equal(t, uuid.Nil, p.PrincipalID)
	assert.Equal(t, uuid.Nil, p.OrganizationID)
}

func TestNewOrganization(t *testing.T) {
	t.Run("creates customer organization", func(t *testing.T) {
		org, err := NewOrganization("Acme Corrugated", OrgKindCustomer, Contact{Name: "Pat", Email: "pat@acme.test"})
		require.NoError(t, err)

		assert.Equal(t, OrgKindCustomer, org.Kind)
		assert.False(t, org.IsInternal())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewOrganization("   ", OrgKindCustomer, Contact{})
		assert.Error(t, err)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := NewOrganization("Acme", OrganizationKind("vendor"), Contact{})
		assert.Error(t, err)
	})
}
