package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"boardshoot-server/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const userKeyPrefix = "user:"

var (
	ErrMiss     = errors.New("cache miss")
	ErrDisabled = errors.New("user mirror is disabled")
)

// Mirror is the non-authoritative user projection cache. Callers never read
// user data from it for authorization.
type Mirror interface {
	Cache(ctx context.Context, profile domain.UserProfile) error
	Get(ctx context.Context, username string) (*domain.UserProfile, error)
	Invalidate(ctx context.Context, username string) error
	Refresh(ctx context.Context, previousUsername string, profile domain.UserProfile)
	Forget(ctx context.Context, username string)
	Ping(ctx context.Context) error
	Keys(ctx context.Context) ([]string, error)
}

// UserMirror stores each profile as a Redis hash under user:{username} with a fixed lifetime.
type UserMirror struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewUserMirror(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *UserMirror {
	return &UserMirror{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "user_mirror").Logger(),
	}
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func userKey(username string) string {
	return userKeyPrefix + username
}

func (m *UserMirror) Cache(ctx context.Context, profile domain.UserProfile) error {
	key := userKey(profile.Username)
	_, err := m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"id", strconv.FormatInt(profile.ID, 10),
			"username", profile.Username,
			"email", profile.Email,
		)
		pipe.Expire(ctx, key, m.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to cache user %s: %w", profile.Username, err)
	}
	return nil
}

func (m *UserMirror) Get(ctx context.Context, username string) (*domain.UserProfile, error) {
	fields, err := m.client.HGetAll(ctx, userKey(username)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cached user %s: %w", username, err)
	}
	if len(fields) == 0 {
		return nil, ErrMiss
	}

	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cached user %s has invalid id: %w", username, err)
	}

	return &domain.UserProfile{
		ID:       id,
		Username: fields["username"],
		Email:    fields["email"],
	}, nil
}

func (m *UserMirror) Invalidate(ctx context.Context, username string) error {
	if err := m.client.Del(ctx, userKey(username)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate user %s: %w", username, err)
	}
	return nil
}

// Refresh drops the entry under previousUsername and writes the new projection.
// Failures are logged only.
func (m *UserMirror) Refresh(ctx context.Context, previousUsername string, profile domain.UserProfile) {
	if previousUsername != "" {
		if err := m.Invalidate(ctx, previousUsername); err != nil {
			m.logger.Warn().Err(err).Msg("mirror invalidate failed")
		}
	}
	if err := m.Invalidate(ctx, profile.Username); err != nil {
		m.logger.Warn().Err(err).Msg("mirror invalidate failed")
	}
	if err := m.Cache(ctx, profile); err != nil {
		m.logger.Warn().Err(err).Msg("mirror write failed")
	}
}

func (m *UserMirror) Forget(ctx context.Context, username string) {
	if err := m.Invalidate(ctx, username); err != nil {
		m.logger.Warn().Err(err).Msg("mirror invalidate failed")
	}
}

func (m *UserMirror) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

func (m *UserMirror) Keys(ctx context.Context) ([]string, error) {
	keys := []string{}
	iter := m.client.Scan(ctx, 0, userKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan mirror keys: %w", err)
	}
	return keys, nil
}

func (m *UserMirror) TTL(ctx context.Context, username string) (time.Duration, error) {
	return m.client.TTL(ctx, userKey(username)).Result()
}

func (m *UserMirror) Close() error {
	return m.client.Close()
}

// Disabled is used when no Redis host is configured.
type Disabled struct{}

func (Disabled) Cache(context.Context, domain.UserProfile) error { return nil }

func (Disabled) Get(context.Context, string) (*domain.UserProfile, error) { return nil, ErrDisabled }

func (Disabled) Invalidate(context.Context, string) error { return nil }

func (Disabled) Refresh(context.Context, string, domain.UserProfile) {}

func (Disabled) Forget(context.Context, string) {}

func (Disabled) Ping(context.Context) error { return ErrDisabled }

func (Disabled) Keys(context.Context) ([]string, error) { return nil, ErrDisabled }
