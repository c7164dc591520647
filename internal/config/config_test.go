package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "DATABASE_URL", "REDIS_ADDR", "QUEUE_TTL", "SESSION_TTL", "START_DELAY", "DEFAULT_RATING", "REQUIRE_AUTH"} {
		t.Setenv(k, "")
	}
	t.Setenv("INSTANCE_ID", "node-a")

	cfg := Load()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 10*time.Minute, cfg.QueueTTL)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.StartDelay)
	assert.Equal(t, 1000, cfg.DefaultRating)
	assert.False(t, cfg.RequireAuth)
	assert.Equal(t, "node-a", cfg.InstanceID)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("QUEUE_TTL", "90")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("START_DELAY", "bogus")
	t.Setenv("REQUIRE_AUTH", "true")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()
	assert.Equal(t, 90*time.Second, cfg.QueueTTL)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.StartDelay)
	assert.True(t, cfg.RequireAuth)
	assert.Equal(t, 3, cfg.RedisDB)
}
