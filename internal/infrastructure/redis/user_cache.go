// Package redis provides a read-through cache in front of the user store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/config"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/repository"
)

const userKeyPrefix = "user:"

// NewClient creates a go-redis client and verifies connectivity.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// CachedUserRepository decorates a UserRepository with per-user caching.
// Reads of single users go through the cache; list queries and writes pass
// straight to the store, with writes invalidating the cached entry.
type CachedUserRepository struct {
	inner  repository.UserRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewCachedUserRepository wraps the given repository with a Redis cache.
func NewCachedUserRepository(inner repository.UserRepository, client *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) repository.UserRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedUserRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func userKey(telegramID int64) string {
	return fmt.Sprintf("%s%d", userKeyPrefix, telegramID)
}

func (r *CachedUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error) {
	key := userKey(telegramID)

	data, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		user := &entity.User{}
		if err := json.Unmarshal(data, user); err == nil {
			return user, nil
		}
		// Corrupt entry: drop it and fall through to the store.
		r.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warnw("redis get failed", "key", key, "error", err)
	}

	user, err := r.inner.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(user); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.logger.Warnw("redis set failed", "key", key, "error", err)
		}
	}

	return user, nil
}

func (r *CachedUserRepository) Create(ctx context.Context, user *entity.User) error {
	if err := r.inner.Create(ctx, user); err != nil {
		return err
	}
	r.invalidate(ctx, user.TelegramID)
	return nil
}

func (r *CachedUserRepository) UpdateStreak(ctx context.Context, telegramID int64, currentStreak, reverseStreak int32, lastCheckIn *time.Time) error {
	if err := r.inner.UpdateStreak(ctx, telegramID, currentStreak, reverseStreak, lastCheckIn); err != nil {
		return err
	}
	r.invalidate(ctx, telegramID)
	return nil
}

func (r *CachedUserRepository) UpdateTimezone(ctx context.Context, telegramID int64, timezone string) error {
	if err := r.inner.UpdateTimezone(ctx, telegramID, timezone); err != nil {
		return err
	}
	r.invalidate(ctx, telegramID)
	return nil
}

func (r *CachedUserRepository) UpdateLanguage(ctx context.Context, telegramID int64, language string) error {
	if err := r.inner.UpdateLanguage(ctx, telegramID, language); err != nil {
		return err
	}
	r.invalidate(ctx, telegramID)
	return nil
}

func (r *CachedUserRepository) GetUsersWithReminders(ctx context.Context) ([]*entity.User, error) {
	return r.inner.GetUsersWithReminders(ctx)
}

func (r *CachedUserRepository) GetAll(ctx context.Context) ([]*entity.User, error) {
	return r.inner.GetAll(ctx)
}

func (r *CachedUserRepository) CountActiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.inner.CountActiveSince(ctx, cutoff)
}

func (r *CachedUserRepository) invalidate(ctx context.Context, telegramID int64) {
	if err := r.client.Del(ctx, userKey(telegramID)).Err(); err != nil {
		r.logger.Warnw("redis invalidate failed", "user_id", telegramID, "error", err)
	}
}
