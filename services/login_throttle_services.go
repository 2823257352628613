package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"techlympics/config"
	"techlympics/logger"
	"techlympics/metrics"

	"github.com/redis/go-redis/v9"
)

// LoginThrottler locks an account for a cooldown after repeated failed logins.
// Counters live in Redis when a client is given, in memory otherwise.
type LoginThrottler struct {
	client *redis.Client
	cfg    config.LoginThrottleConfig
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*throttleEntry
}

type throttleEntry struct {
	failures    int
	lastFailure time.Time
	lockedUntil time.Time
}

func NewLoginThrottler(client *redis.Client, cfg config.LoginThrottleConfig) *LoginThrottler {
	return &LoginThrottler{
		client:  client,
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[string]*throttleEntry),
	}
}

func throttleKey(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// Locked returns the remaining cooldown for an identifier, 0 when a login may be attempted
func (t *LoginThrottler) Locked(ctx context.Context, identifier string) time.Duration {
	key := throttleKey(identifier)

	if t.client != nil {
		ttl, err := t.client.PTTL(ctx, "login:lock:"+key).Result()
		if err == nil && ttl > 0 {
			metrics.LoginThrottled.Inc()
			return ttl
		}
		if err != nil {
			logger.Log.WithError(err).Warn("Login throttle lookup failed")
		}
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[key]
	if !ok {
		return 0
	}
	if remaining := entry.lockedUntil.Sub(t.now()); remaining > 0 {
		metrics.LoginThrottled.Inc()
		return remaining
	}
	return 0
}

// Failure records a failed login and returns the cooldown it triggered, if any
func (t *LoginThrottler) Failure(ctx context.Context, identifier string) time.Duration {
	key := throttleKey(identifier)

	if t.client != nil {
		failuresKey := "login:failures:" + key
		pipe := t.client.TxPipeline()
		incr := pipe.Incr(ctx, failuresKey)
		pipe.Expire(ctx, failuresKey, t.cfg.Window)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Log.WithError(err).Warn("Login throttle update failed")
			return 0
		}
		cooldown := t.cfg.Cooldown(int(incr.Val()))
		if cooldown > 0 {
			if err := t.client.Set(ctx, "login:lock:"+key, fmt.Sprint(incr.Val()), cooldown).Err(); err != nil {
				logger.Log.WithError(err).Warn("Login throttle lock failed")
			}
		}
		return cooldown
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	entry, ok := t.entries[key]
	if !ok || now.Sub(entry.lastFailure) > t.cfg.Window {
		entry = &throttleEntry{}
		t.entries[key] = entry
	}
	entry.failures++
	entry.lastFailure = now
	cooldown := t.cfg.Cooldown(entry.failures)
	if cooldown > 0 {
		entry.lockedUntil = now.Add(cooldown)
	}
	return cooldown
}

// Success clears the failure history of an identifier
func (t *LoginThrottler) Success(ctx context.Context, identifier string) {
	key := throttleKey(identifier)

	if t.client != nil {
		if err := t.client.Del(ctx, "login:failures:"+key, "login:lock:"+key).Err(); err != nil {
			logger.Log.WithError(err).Warn("Login throttle reset failed")
		}
		return
	}

	t.mu.Lock()
	delete(t.entries, key)
	t.mu.Unlock()
}
