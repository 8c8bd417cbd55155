package cache

import (
	"context"
	"testing"

	"github.com/Domenick1991/bookit/config"
	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "cache:experiences", experiencesKey())
	assert.Equal(t, "idem:bookings:2:15", dedupKey("bookings:2:15"))
}

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379", ExperiencesCacheTTL: 30, DedupTTL: 5})
	defer c.Close()

	assert.Equal(t, "30s", c.experiencesTTL.String())
	assert.Equal(t, "5m0s", c.dedupTTL.String())
}

func TestSetExperiences_DisabledTTLSkipsRedis(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "127.0.0.1:1"})
	defer c.Close()

	assert.NoError(t, c.SetExperiences(context.Background(), nil))
}
