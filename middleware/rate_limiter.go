package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"techlympics/metrics"
	"techlympics/utils/response"

	"github.com/gin-gonic/gin"
)

// idle buckets are dropped once they have been untouched this long
const visitorMaxIdle = 30 * time.Minute

// RateLimiter is a per client IP token bucket refilled every interval
type RateLimiter struct {
	visitors  map[string]*Visitor
	mu        sync.Mutex
	rate      int           // Tokens added per interval
	burst     int           // Bucket capacity
	interval  time.Duration // Refill interval
	lastSweep time.Time
	now       func() time.Time
}

type Visitor struct {
	tokens      int
	lastUpdated time.Time
}

func NewRateLimiter(rate int, burst int) *RateLimiter {
	return &RateLimiter{
		visitors:  make(map[string]*Visitor),
		rate:      rate,
		burst:     burst,
		interval:  time.Minute,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow takes one token from the client's bucket
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > visitorMaxIdle {
		rl.sweep(now, visitorMaxIdle)
	}

	visitor, exists := rl.visitors[ip]
	if !exists {
		visitor = &Visitor{tokens: rl.burst, lastUpdated: now}
		rl.visitors[ip] = visitor
	}

	refill := int(now.Sub(visitor.lastUpdated) / rl.interval)
	if refill > 0 {
		visitor.tokens += refill * rl.rate
		if visitor.tokens > rl.burst {
			visitor.tokens = rl.burst
		}
		visitor.lastUpdated = now
	}

	if visitor.tokens > 0 {
		visitor.tokens--
		return true
	}
	return false
}

// Cleanup forgets visitors idle for longer than maxIdle
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.sweep(rl.now(), maxIdle)
}

// Visitors returns how many client buckets are tracked
func (rl *RateLimiter) Visitors() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

func (rl *RateLimiter) sweep(now time.Time, maxIdle time.Duration) {
	for ip, visitor := range rl.visitors {
		if now.Sub(visitor.lastUpdated) > maxIdle {
			delete(rl.visitors, ip)
		}
	}
	rl.lastSweep = now
}

func RateLimiterMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.Allow(ip) {
			metrics.RateLimiterRejections.WithLabelValues(ip).Inc()
			c.Header("Retry-After", strconv.Itoa(int(rl.interval.Seconds())))
			response.Abort(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
