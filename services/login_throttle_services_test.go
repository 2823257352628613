package services

import (
	"context"
	"testing"
	"time"

	"techlympics/config"

	"github.com/stretchr/testify/assert"
)

func TestLoginThrottlerInMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	throttler := NewLoginThrottler(nil, config.DefaultLoginThrottleConfig)
	throttler.now = func() time.Time { return now }

	assert.Zero(t, throttler.Failure(ctx, "User@Example.com"))
	assert.Zero(t, throttler.Failure(ctx, "user@example.com"))
	assert.Zero(t, throttler.Locked(ctx, "user@example.com"))

	assert.Equal(t, 3*time.Minute, throttler.Failure(ctx, "user@example.com"))
	assert.Equal(t, 3*time.Minute, throttler.Locked(ctx, "USER@example.com"))

	now = now.Add(time.Minute)
	assert.Equal(t, 2*time.Minute, throttler.Locked(ctx, "user@example.com"))

	now = now.Add(3 * time.Minute)
	assert.Zero(t, throttler.Locked(ctx, "user@example.com"))
	assert.Equal(t, 3*time.Minute, throttler.Failure(ctx, "user@example.com"))
	assert.Equal(t, 5*time.Minute, throttler.Failure(ctx, "user@example.com"))

	throttler.Success(ctx, "user@example.com")
	assert.Zero(t, throttler.Locked(ctx, "user@example.com"))
	assert.Zero(t, throttler.Failure(ctx, "user@example.com"))
}

func TestLoginThrottlerForgetsOldFailures(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	throttler := NewLoginThrottler(nil, config.DefaultLoginThrottleConfig)
	throttler.now = func() time.Time { return now }

	throttler.Failure(ctx, "a@b.c")
	throttler.Failure(ctx, "a@b.c")
	now = now.Add(config.DefaultLoginThrottleConfig.Window + time.Second)
	assert.Zero(t, throttler.Failure(ctx, "a@b.c"))
}
