//go:build integration_test || all_tests

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testingpkg "github.com/2beens/serjblog/pkg/testing"
)

func TestService_RealRedis(t *testing.T) {
	ctx, rdb := testingpkg.GetRedisClientAndCtx(t)
	authService := NewAuthService(time.Minute, rdb)

	token, err := authService.NewSession(ctx, 7)
	require.NoError(t, err)
	require.Len(t, token, tokenLength)
	t.Cleanup(func() {
		_ = authService.EndSession(ctx, token)
	})

	userID, err := authService.SessionUserID(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 7, userID)

	ttl, err := rdb.TTL(ctx, sessionKeyPrefix+token).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	require.NoError(t, authService.AddFlash(ctx, token, "first"))
	require.NoError(t, authService.AddFlash(ctx, token, "second"))
	flashTTL, err := rdb.TTL(ctx, flashKeyPrefix+token).Result()
	require.NoError(t, err)
	assert.True(t, flashTTL > 0)

	messages, err := authService.PopFlashes(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, messages)
	messages, err = authService.PopFlashes(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, messages)

	require.NoError(t, authService.AddFlash(ctx, token, "left behind"))
	require.NoError(t, authService.EndSession(ctx, token))
	_, err = authService.SessionUserID(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	exists, err := rdb.Exists(ctx, flashKeyPrefix+token).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}
