package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/central-university-dev/go-tubecord/internal/domain/models"
	"github.com/central-university-dev/go-tubecord/internal/domain/repositories"
	"github.com/go-redis/redis/v8"
)

// RedisHandleCache кэширует чтение таблицы channel_handles. Ошибки Redis логируются,
// и запрос уходит в основной репозиторий.
type RedisHandleCache struct {
	client     *redis.Client
	backing    repositories.ChannelHandleRepository
	ttl        time.Duration
	logger     *slog.Logger
	keyPattern string
}

type cachedHandle struct {
	ChannelID    string    `json:"channel_id"`
	Handle       string    `json:"handle"`
	ChannelName  string    `json:"channel_name"`
	ResolvedAt   time.Time `json:"resolved_at"`
	LastVerified time.Time `json:"last_verified"`
}

func NewRedisClient(ctx context.Context, redisURL, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	return client, nil
}

func NewRedisHandleCache(
	client *redis.Client,
	backing repositories.ChannelHandleRepository,
	ttl time.Duration,
	logger *slog.Logger,
) *RedisHandleCache {
	return &RedisHandleCache{
		client:     client,
		backing:    backing,
		ttl:        ttl,
		logger:     logger,
		keyPattern: "channel:handle:%s",
	}
}

func (c *RedisHandleCache) Get(ctx context.Context, channelID string) (*models.ChannelHandle, error) {
	key := fmt.Sprintf(c.keyPattern, channelID)

	data, err := c.client.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		var cached cachedHandle
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached.toModel(), nil
		}

		c.logger.Warn("Повреждена запись хэндла в Redis, удаляем", "channelID", channelID)
		c.client.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Ошибка при чтении хэндла из Redis",
			"channelID", channelID,
			"error", err,
		)
	}

	handle, err := c.backing.Get(ctx, channelID)
	if err != nil {
		return nil, err
	}

	c.store(ctx, handle)

	return handle, nil
}

func (c *RedisHandleCache) Save(ctx context.Context, handle *models.ChannelHandle) error {
	if err := c.backing.Save(ctx, handle); err != nil {
		c.client.Del(ctx, fmt.Sprintf(c.keyPattern, handle.ChannelID))
		return err
	}

	c.store(ctx, handle)

	return nil
}

func (c *RedisHandleCache) Close() error {
	return c.client.Close()
}

func (c *RedisHandleCache) store(ctx context.Context, handle *models.ChannelHandle) {
	data, err := json.Marshal(fromModel(handle))
	if err != nil {
		c.logger.Warn("Ошибка при сериализации хэндла для Redis", "error", err)
		return
	}

	if err := c.client.Set(ctx, fmt.Sprintf(c.keyPattern, handle.ChannelID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Ошибка при сохранении хэндла в Redis",
			"channelID", handle.ChannelID,
			"error", err,
		)
	}
}

func fromModel(h *models.ChannelHandle) cachedHandle {
	return cachedHandle{
		ChannelID:    h.ChannelID,
		Handle:       h.Handle,
		ChannelName:  h.ChannelName,
		ResolvedAt:   h.ResolvedAt.UTC(),
		LastVerified: h.LastVerified.UTC(),
	}
}

func (c cachedHandle) toModel() *models.ChannelHandle {
	return &models.ChannelHandle{
		ChannelID:    c.ChannelID,
		Handle:       c.Handle,
		ChannelName:  c.ChannelName,
		ResolvedAt:   c.ResolvedAt.UTC(),
		LastVerified: c.LastVerified.UTC(),
	}
}
