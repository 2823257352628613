package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginThrottleCooldown(t *testing.T) {
	cfg := DefaultLoginThrottleConfig

	assert.Equal(t, time.Duration(0), cfg.Cooldown(0))
	assert.Equal(t, time.Duration(0), cfg.Cooldown(2))
	assert.Equal(t, 3*time.Minute, cfg.Cooldown(3))
	assert.Equal(t, 3*time.Minute, cfg.Cooldown(4))
	assert.Equal(t, 5*time.Minute, cfg.Cooldown(5))
	assert.Equal(t, 5*time.Minute, cfg.Cooldown(12))
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("REDIS_DB", "not-a-number")

	LoadConfig()

	assert.Equal(t, "mysql", DBDriver)
	assert.Equal(t, 2*time.Hour, JWTExpiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, AllowedOrigins)
	assert.Equal(t, 0, RedisDB)
	assert.Equal(t, "MT", SerialPrefix)
}

func TestValidateJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	t.Setenv("ENV", "development")
	LoadConfig()
	assert.Equal(t, DefaultJWTSecret, JWTSecret)
	assert.NoError(t, Validate())

	t.Setenv("ENV", "production")
	LoadConfig()
	assert.ErrorIs(t, Validate(), ErrInsecureJWTSecret)

	t.Setenv("JWT_SECRET", DefaultJWTSecret)
	LoadConfig()
	assert.ErrorIs(t, Validate(), ErrInsecureJWTSecret)

	t.Setenv("JWT_SECRET", "a-long-random-production-secret")
	LoadConfig()
	assert.NoError(t, Validate())
}
