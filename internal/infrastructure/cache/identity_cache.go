package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/packops/backend/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// IdentityCache caches the external-identity to principal-context mapping so
// the resolver does not hit the database on every request. Entries are
// invalidated when a principal changes role or is deactivated; a short TTL
// bounds staleness either way.
type IdentityCache interface {
	Get(ctx context.Context, externalIdentity string) (*identity.PrincipalContext, bool, error)
	Set(ctx context.Context, externalIdentity string, pc identity.PrincipalContext, ttl time.Duration) error
	Invalidate(ctx context.Context, externalIdentity string) error
}

type cachedContext struct {
	PrincipalID    uuid.UUID `json:"principal_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Role           string    `json:"role"`
	OrgKind        string    `json:"org_kind"`
}

// RedisIdentityCache implements IdentityCache using Redis, suitable for
// deployments with multiple instances sharing the resolver state.
type RedisIdentityCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdentityCache creates an identity cache with an existing Redis client
func NewRedisIdentityCache(client *redis.Client) *RedisIdentityCache {
	return &RedisIdentityCache{
		client:    client,
		keyPrefix: "identity:resolve:",
	}
}

func (c *RedisIdentityCache) key(externalIdentity string) string {
	return c.keyPrefix + externalIdentity
}

// Get returns the cached principal context for an external identity
func (c *RedisIdentityCache) Get(ctx context.Context, externalIdentity string) (*identity.PrincipalContext, bool, error) {
	raw, err := c.client.Get(ctx, c.key(externalIdentity)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read identity cache: %w", err)
	}

	var cached cachedContext
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		// Treat a corrupt entry as a miss; it will be rewritten on resolve
		return nil, false, nil
	}

	return &identity.PrincipalContext{
		PrincipalID:    cached.PrincipalID,
		OrganizationID: cached.OrganizationID,
		Role:           identity.Role(cached.Role),
		OrgKind:        identity.OrganizationKind(cached.OrgKind),
	}, true, nil
}

// Set stores the principal context for an external identity
func (c *RedisIdentityCache) Set(ctx context.Context, externalIdentity string, pc identity.PrincipalContext, ttl time.Duration) error {
	raw, err := json.Marshal(cachedContext{
		PrincipalID:    pc.PrincipalID,
		OrganizationID: pc.OrganizationID,
		Role:           pc.Role.String(),
		OrgKind:        pc.OrgKind.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode identity cache entry: %w", err)
	}

	if err := c.client.Set(ctx, c.key(externalIdentity), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write identity cache: %w", err)
	}
	return nil
}

// Invalidate removes the cached mapping for an external identity
func (c *RedisIdentityCache) Invalidate(ctx context.Context, externalIdentity string) error {
	if err := c.client.Del(ctx, c.key(externalIdentity)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate identity cache: %w", err)
	}
	return nil
}

var _ IdentityCache = (*RedisIdentityCache)(nil)

// InMemoryIdentityCache implements IdentityCache in process memory. Used in
// tests and single-instance deployments.
type InMemoryIdentityCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
}

type inMemoryEntry struct {
	pc        identity.PrincipalContext
	expiresAt time.Time
}

// NewInMemoryIdentityCache creates an in-memory identity cache
func NewInMemoryIdentityCache() *InMemoryIdentityCache {
	return &InMemoryIdentityCache{entries: make(map[string]inMemoryEntry)}
}

// Get returns the cached principal context for an external identity
func (c *InMemoryIdentityCache) Get(_ context.Context, externalIdentity string) (*identity.PrincipalContext, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[externalIdentity]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, externalIdentity)
		c.mu.Unlock()
		return nil, false, nil
	}

	pc := entry.pc
	return &pc, true, nil
}

// Set stores the principal context for an external identity
func (c *InMemoryIdentityCache) Set(_ context.Context, externalIdentity string, pc identity.PrincipalContext, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[externalIdentity] = inMemoryEntry{pc: pc, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Invalidate removes the cached mapping for an external identity
func (c *InMemoryIdentityCache) Invalidate(_ context.Context, externalIdentity string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, externalIdentity)
	return nil
}

var _ IdentityCache = (*InMemoryIdentityCache)(nil)
