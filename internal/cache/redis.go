package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/bookit/config"
	"github.com/Domenick1991/bookit/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache caches experience summaries and remembers consumed messages.
// Slot state is never cached, so reservations always read the store.
type RedisCache struct {
	client         *redis.Client
	experiencesTTL time.Duration
	dedupTTL       time.Duration
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return &RedisCache{
		client:         redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		experiencesTTL: time.Duration(cfg.ExperiencesCacheTTL) * time.Second,
		dedupTTL:       time.Duration(cfg.DedupTTL) * time.Minute,
	}
}

// GetExperiences returns nil, nil on a cache miss.
func (c *RedisCache) GetExperiences(ctx context.Context) ([]domain.Experience, error) {
	data, err := c.client.Get(ctx, experiencesKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var experiences []domain.Experience
	if err := json.Unmarshal(data, &experiences); err != nil {
		return nil, err
	}
	return experiences, nil
}

func (c *RedisCache) SetExperiences(ctx context.Context, experiences []domain.Experience) error {
	if c.experiencesTTL <= 0 {
		return nil
	}
	payload, err := json.Marshal(experiences)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, experiencesKey(), payload, c.experiencesTTL).Err()
}

func (c *RedisCache) InvalidateExperiences(ctx context.Context) error {
	return c.client.Del(ctx, experiencesKey()).Err()
}

// Processed reports whether MarkProcessed has recorded key within the dedup TTL.
func (c *RedisCache) Processed(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, dedupKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisCache) MarkProcessed(ctx context.Context, key string) error {
	return c.client.Set(ctx, dedupKey(key), "1", c.dedupTTL).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func experiencesKey() string {
	return "cache:experiences"
}

func dedupKey(key string) string {
	return fmt.Sprintf("idem:%s", key)
}
