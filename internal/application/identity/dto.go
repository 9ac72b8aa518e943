package identity

import (
	"time"

	"github.com/google/uuid"
)

// LoginInput contains credentials for authentication
type LoginInput struct {
	Username string
	Password string
	IP       string
}

// PrincipalInfo is the principal view returned to callers
type PrincipalInfo struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"display_name,omitempty"`
	Email          string    `json:"email,omitempty"`
	Role           string    `json:"role"`
	OrgKind        string    `json:"org_kind"`
}

// LoginResult contains tokens and principal info after successful login
type LoginResult struct {
	AccessToken           string        `json:"access_token"`
	RefreshToken          string        `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time     `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time     `json:"refresh_token_expires_at"`
	TokenType             string        `json:"token_type"`
	Principal             PrincipalInfo `json:"principal"`
}

// RefreshResult contains the rotated token pair
type RefreshResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// CreateOrganizationInput contains input for creating an organization
type CreateOrganizationInput struct {
	Name         string
	Kind         string
	ContactName  string
	ContactEmail string
	ContactPhone string
}

// OrganizationInfo is the organization view returned to callers
type OrganizationInfo struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Kind         string    `json:"kind"`
	ContactName  string    `json:"contact_name,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreatePrincipalInput contains input for creating a principal
type CreatePrincipalInput struct {
	OrganizationID   uuid.UUID
	Role             string
	Username         string
	Password         string
	ExternalIdentity string
	Email            string
	DisplayName      string
}
