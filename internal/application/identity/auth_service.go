package identity

import (
	"context"
	"time"

	"github.com/packops/backend/internal/domain/identity"
	"github.com/packops/backend/internal/domain/shared"
	"github.com/packops/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService handles authentication operations
type AuthService struct {
	principalRepo identity.PrincipalRepository
	resolver      *ResolverService
	jwtService    *auth.JWTService
	blacklist     auth.TokenBlacklist
	config        AuthServiceConfig
	logger        *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	principalRepo identity.PrincipalRepository,
	resolver *ResolverService,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		principalRepo: principalRepo,
		resolver:      resolver,
		jwtService:    jwtService,
		blacklist:     blacklist,
		config:        config,
		logger:        logger,
	}
}

// Login authenticates a principal and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("username", input.Username))

	p, err := s.principalRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Warn("Principal not found during login", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !p.IsActive() {
		s.logger.Warn("Login attempt for inactive principal",
			zap.String("username", input.Username),
			zap.String("status", string(p.Status)))
		if p.Status == identity.PrincipalStatusLocked {
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later or contact support")
		}
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !p.VerifyPassword(input.Password) {
		p.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.principalRepo.Save(ctx, p); err != nil {
			s.logger.Error("Failed to update principal after login failure", zap.Error(err))
		}

		if p.Status == identity.PrincipalStatusLocked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("username", input.Username),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}

		s.logger.Warn("Invalid password attempt",
			zap.String("username", input.Username),
			zap.Int("failed_attempts", p.FailedAttempts))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	pc, err := s.resolver.ResolvePrincipal(ctx, p)
	if err != nil {
		s.logger.Error("Failed to resolve principal context during login", zap.Error(err))
		return nil, err
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		OrganizationID: pc.OrganizationID,
		PrincipalID:    pc.PrincipalID,
		Username:       p.Username,
		Role:           pc.Role.String(),
		OrgKind:        pc.OrgKind.String(),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	p.RecordLogin(input.IP)
	if err := s.principalRepo.Save(ctx, p); err != nil {
		// Don't fail the login, just log the error
		s.logger.Error("Failed to update principal after successful login", zap.Error(err))
	}

	s.logger.Info("Principal logged in",
		zap.String("username", p.Username),
		zap.String("principal_id", p.ID.String()))

	return &LoginResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
		Principal: PrincipalInfo{
			ID:             p.ID,
			OrganizationID: p.OrganizationID,
			Username:       p.Username,
			DisplayName:    p.DisplayName,
			Email:          p.Email,
			Role:           pc.Role.String(),
			OrgKind:        pc.OrgKind.String(),
		},
	}, nil
}

// Refresh rotates a token pair. The principal is re-read so revoked access
// or a changed role takes effect immediately.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}

	blacklisted, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("Failed to check token blacklist", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate token")
	}
	if blacklisted {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token has been revoked")
	}

	principalID, err := claims.GetPrincipalUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid")
	}

	invalidated, err := s.blacklist.IsPrincipalTokenInvalidated(ctx, principalID.String(), claims.GetIssuedAtTime())
	if err != nil {
		s.logger.Error("Failed to check principal invalidation", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to validate token")
	}
	if invalidated {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token has been revoked")
	}

	p, err := s.principalRepo.FindByID(ctx, principalID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Principal no longer exists")
	}
	if !p.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account is no longer active")
	}

	pc, err := s.resolver.ResolvePrincipal(ctx, p)
	if err != nil {
		return nil, err
	}

	// Rotate: the old refresh token is blacklisted for its remaining life
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to blacklist rotated refresh token", zap.Error(err))
	}

	tokenPair, err := s.jwtService.RefreshTokenPair(refreshToken, p.Username, pc.Role.String(), pc.OrgKind.String())
	if err != nil {
		if err == auth.ErrMaxRefreshExceeded {
			return nil, shared.NewDomainError("REFRESH_LIMIT_EXCEEDED", "Session has expired, please log in again")
		}
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token is invalid or expired")
	}

	return &RefreshResult{
		AccessToken:           tokenPair.AccessToken,
		RefreshToken:          tokenPair.RefreshToken,
		AccessTokenExpiresAt:  tokenPair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: tokenPair.RefreshTokenExpiresAt,
		TokenType:             tokenPair.TokenType,
	}, nil
}

// Logout revokes the presented access token and all of the principal's
// refresh tokens
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		// Already unusable; nothing to revoke
		return nil
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to blacklist access token on logout", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
	}

	if err := s.blacklist.AddPrincipalTokensToBlacklist(ctx, claims.PrincipalID, s.jwtService.GetRefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to invalidate principal sessions on logout", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
	}

	s.logger.Info("Principal logged out", zap.String("principal_id", claims.PrincipalID))
	return nil
}
