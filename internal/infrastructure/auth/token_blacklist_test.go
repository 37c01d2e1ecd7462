package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qayed/backend/internal/infrastructure/auth"
)

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()

	t.Run("revoked JTI is blacklisted, others are not", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-logout", time.Hour))

		revoked, err := blacklist.IsBlacklisted(ctx, "jti-logout")
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = blacklist.IsBlacklisted(ctx, "jti-other")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("expired entries stop matching", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-short", time.Millisecond))

		time.Sleep(10 * time.Millisecond)

		revoked, err := blacklist.IsBlacklisted(ctx, "jti-short")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("user cutoff rejects earlier tokens only", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		oldToken := time.Now().Add(-time.Hour)

		invalidated, err := blacklist.IsUserTokenInvalidated(ctx, "user-1", oldToken)
		require.NoError(t, err)
		assert.False(t, invalidated, "no cutoff recorded yet")

		require.NoError(t, blacklist.AddUserTokensToBlacklist(ctx, "user-1", time.Hour))

		invalidated, err = blacklist.IsUserTokenInvalidated(ctx, "user-1", oldToken)
		require.NoError(t, err)
		assert.True(t, invalidated, "tokens issued before the cutoff are revoked")

		invalidated, err = blacklist.IsUserTokenInvalidated(ctx, "user-1", time.Now().Add(time.Second))
		require.NoError(t, err)
		assert.False(t, invalidated, "tokens issued after the cutoff stay valid")

		invalidated, err = blacklist.IsUserTokenInvalidated(ctx, "user-2", oldToken)
		require.NoError(t, err)
		assert.False(t, invalidated, "other users are unaffected")
	})
}
