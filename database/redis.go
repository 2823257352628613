package database

import (
	"context"
	"time"

	"techlympics/config"
	"techlympics/logger"

	"github.com/redis/go-redis/v9"
)

// RDB is nil when REDIS_ADDR is not configured; callers must check it
var RDB *redis.Client

// InitRedis connects to Redis when an address is configured
func InitRedis() {
	if config.RedisAddr == "" {
		logger.Log.Info("Redis disabled, caching and login throttling are off")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Log.WithError(err).Warn("Redis unreachable, continuing without cache")
		_ = client.Close()
		return
	}

	RDB = client
	logger.Log.WithField("addr", config.RedisAddr).Info("Redis connected")
}
