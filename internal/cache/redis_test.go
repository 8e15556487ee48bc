package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/marketplace-backend/internal/config"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		Password:     "",
		DB:           0,
		User:         "",
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache, mr
}

func TestRevokeTokenAndCheck(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	revoked, err := cache.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, cache.RevokeToken(ctx, "jti-1", time.Minute))

	revoked, err = cache.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevokeTokenExpires(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.RevokeToken(ctx, "jti-1", time.Minute))
	mr.FastForward(2 * time.Minute)

	revoked, err := cache.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeExpiredTokenIsNoop(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	// отрицательный TTL означает, что токен уже истёк
	require.NoError(t, cache.RevokeToken(ctx, "jti-1", -time.Second))

	revoked, err := cache.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestConsumeResetTokenIsSingleUse(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.StoreResetToken(ctx, "token-1", "user-uid-1", time.Minute))

	userUID, found, err := cache.ConsumeResetToken(ctx, "token-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "user-uid-1", userUID)

	_, found, err = cache.ConsumeResetToken(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestConsumeResetTokenExpired(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.StoreResetToken(ctx, "token-1", "user-uid-1", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, found, err := cache.ConsumeResetToken(ctx, "token-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestConsumeUnknownResetToken(t *testing.T) {
	cache, _ := setupTestCache(t)

	_, found, err := cache.ConsumeResetToken(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreAndConsumeOtp(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.StoreOtp(ctx, "111", "code-hash", time.Minute))

	codeHash, found, err := cache.ConsumeOtp(ctx, "111")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "code-hash", codeHash)

	_, found, err = cache.ConsumeOtp(ctx, "111")
	require.NoError(t, err)
	assert.False(t, found)
}
