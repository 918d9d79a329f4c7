package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/serjblog/internal/telemetry/tracing"
	"github.com/2beens/serjblog/pkg"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "blog-session||"
	flashKeyPrefix   = "blog-flash||"
	tokenLength      = 35

	// AnonymousUserID marks a visitor session that only carries flash messages
	AnonymousUserID = 0
)

var ErrSessionNotFound = errors.New("session not found")

// Service keeps sessions and their flash messages in redis.
// Session keys expire on their own, so there is nothing to clean up.
type Service struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewAuthService(
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (as *Service) NewSession(ctx context.Context, userID int) (string, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.NewSession")
	defer span.End()

	token, err := as.RandStringFunc(tokenLength)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	if err := as.redisClient.Set(ctx, sessionKeyPrefix+token, userID, as.ttl).Err(); err != nil {
		return "", err
	}

	return token, nil
}

// SessionUserID returns the user bound to the session, AnonymousUserID for visitor sessions.
func (as *Service) SessionUserID(ctx context.Context, token string) (int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.SessionUserID")
	defer span.End()

	userIDStr, err := as.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return AnonymousUserID, ErrSessionNotFound
		}
		return AnonymousUserID, err
	}

	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		return AnonymousUserID, fmt.Errorf("invalid session value [%s]: %w", userIDStr, err)
	}

	return userID, nil
}

func (as *Service) EndSession(ctx context.Context, token string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.EndSession")
	defer span.End()

	deleted, err := as.redisClient.Del(ctx, sessionKeyPrefix+token, flashKeyPrefix+token).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		log.Tracef("end session: no keys found for token %s", token)
	}

	return nil
}

func (as *Service) AddFlash(ctx context.Context, token, message string) error {
	flashKey := flashKeyPrefix + token
	if err := as.redisClient.RPush(ctx, flashKey, message).Err(); err != nil {
		return err
	}
	return as.redisClient.Expire(ctx, flashKey, as.ttl).Err()
}

// PopFlashes returns pending flash messages in the order they were added, and removes them.
// Read and delete run in one MULTI block, a flash added meanwhile is either returned or kept.
func (as *Service) PopFlashes(ctx context.Context, token string) ([]string, error) {
	flashKey := flashKeyPrefix + token

	var lrangeCmd *redis.StringSliceCmd
	if _, err := as.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrangeCmd = pipe.LRange(ctx, flashKey, 0, -1)
		pipe.Del(ctx, flashKey)
		return nil
	}); err != nil {
		return nil, err
	}

	messages := lrangeCmd.Val()
	if len(messages) == 0 {
		return nil, nil
	}

	return messages, nil
}
