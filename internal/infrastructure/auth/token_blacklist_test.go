package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_JTI(t *testing.T) {
	ctx := context.Background()
	b := NewInMemoryTokenBlacklist()

	t.Run("unknown jti is not blacklisted", func(t *testing.T) {
		blacklisted, err := b.IsBlacklisted(ctx, "unknown")
		require.NoError(t, err)
		assert.False(t, blacklisted)
	})

	t.Run("blacklisted jti is found", func(t *testing.T) {
		require.NoError(t, b.AddToBlacklist(ctx, "jti-1", time.Minute))

		blacklisted, err := b.IsBlacklisted(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, blacklisted)
	})

	t.Run("expired entry is evicted", func(t *testing.T) {
		require.NoError(t, b.AddToBlacklist(ctx, "jti-2", -time.Second))

		blacklisted, err := b.IsBlacklisted(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, blacklisted)
	})
}

func TestInMemoryTokenBlacklist_PrincipalInvalidation(t *testing.T) {
	ctx := context.Background()
	b := NewInMemoryTokenBlacklist()

	issuedBefore := time.Now().Add(-time.Minute)
	require.NoError(t, b.AddPrincipalTokensToBlacklist(ctx, "principal-1", time.Hour))
	issuedAfter := time.Now().Add(time.Minute)

	t.Run("tokens issued before invalidation are rejected", func(t *testing.T) {
		invalid, err := b.IsPrincipalTokenInvalidated(ctx, "principal-1", issuedBefore)
		require.NoError(t, err)
		assert.True(t, invalid)
	})

	t.Run("tokens issued after invalidation stay valid", func(t *testing.T) {
		invalid, err := b.IsPrincipalTokenInvalidated(ctx, "principal-1", issuedAfter)
		require.NoError(t, err)
		assert.False(t, invalid)
	})

	t.Run("other principals unaffected", func(t *testing.T) {
		invalid, err := b.IsPrincipalTokenInvalidated(ctx, "principal-2", issuedBefore)
		require.NoError(t, err)
		assert.False(t, invalid)
	})
}
