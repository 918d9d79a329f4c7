package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func fixedToken(token string) func(int) (string, error) {
	return func(int) (string, error) {
		return token, nil
	}
}

func TestAuthService_NewAuthService(t *testing.T) {
	db, _ := redismock.NewClientMock()
	defer db.Close()

	authService := NewAuthService(time.Hour, db)
	require.NotNil(t, authService)
	assert.NotNil(t, authService.redisClient)
	assert.Equal(t, time.Hour, authService.ttl)
	require.NotNil(t, authService.RandStringFunc)

	token, err := authService.RandStringFunc(tokenLength)
	require.NoError(t, err)
	assert.Len(t, token, tokenLength)
}

func TestAuthService_NewSession(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	defer db.Close()

	authService := NewAuthService(time.Hour, db)
	authService.RandStringFunc = fixedToken("test_token")

	mock.ExpectSet(sessionKeyPrefix+"test_token", 7, time.Hour).SetVal("OK")
	token, err := authService.NewSession(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "test_token", token)

	authService.RandStringFunc = func(int) (string, error) {
		return "", errors.New("no entropy")
	}
	token, err = authService.NewSession(ctx, 7)
	assert.EqualError(t, err, "generate token: no entropy")
	assert.Empty(t, token)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_SessionUserID(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	defer db.Close()

	authService := NewAuthService(time.Hour, db)

	mock.ExpectGet(sessionKeyPrefix + "t1").SetVal("3")
	userID, err := authService.SessionUserID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 3, userID)

	mock.ExpectGet(sessionKeyPrefix + "t2").SetVal("0")
	userID, err = authService.SessionUserID(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, AnonymousUserID, userID)

	mock.ExpectGet(sessionKeyPrefix + "expired").RedisNil()
	_, err = authService.SessionUserID(ctx, "expired")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	mock.ExpectGet(sessionKeyPrefix + "garbage").SetVal("abc")
	_, err = authService.SessionUserID(ctx, "garbage")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)

	mock.ExpectGet(sessionKeyPrefix + "t3").SetErr(errors.New("redis down"))
	_, err = authService.SessionUserID(ctx, "t3")
	assert.EqualError(t, err, "redis down")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_EndSession(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	defer db.Close()

	authService := NewAuthService(time.Hour, db)

	mock.ExpectDel(sessionKeyPrefix+"t1", flashKeyPrefix+"t1").SetVal(1)
	require.NoError(t, authService.EndSession(ctx, "t1"))

	// nothing to delete is fine
	mock.ExpectDel(sessionKeyPrefix+"t2", flashKeyPrefix+"t2").SetVal(0)
	require.NoError(t, authService.EndSession(ctx, "t2"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_Flashes(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	defer db.Close()

	authService := NewAuthService(time.Hour, db)
	flashKey := flashKeyPrefix + "t1"

	mock.ExpectRPush(flashKey, "first").SetVal(1)
	mock.ExpectExpire(flashKey, time.Hour).SetVal(true)
	mock.ExpectRPush(flashKey, "second").SetVal(2)
	mock.ExpectExpire(flashKey, time.Hour).SetVal(true)
	require.NoError(t, authService.AddFlash(ctx, "t1", "first"))
	require.NoError(t, authService.AddFlash(ctx, "t1", "second"))

	mock.ExpectTxPipeline()
	mock.ExpectLRange(flashKey, 0, -1).SetVal([]string{"first", "second"})
	mock.ExpectDel(flashKey).SetVal(1)
	mock.ExpectTxPipelineExec()
	messages, err := authService.PopFlashes(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, messages)

	// popped already
	mock.ExpectTxPipeline()
	mock.ExpectLRange(flashKey, 0, -1).SetVal([]string{})
	mock.ExpectDel(flashKey).SetVal(0)
	mock.ExpectTxPipelineExec()
	messages, err = authService.PopFlashes(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, messages)

	// redis failure inside the transaction
	mock.ExpectTxPipeline()
	mock.ExpectLRange(flashKey, 0, -1).SetErr(errors.New("redis down"))
	messages, err = authService.PopFlashes(ctx, "t1")
	require.Error(t, err)
	assert.Nil(t, messages)

	assert.NoError(t, mock.ExpectationsWereMet())
}
