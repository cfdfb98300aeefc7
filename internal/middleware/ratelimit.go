package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenBucket is an in-memory per-client rate limiter.
type TokenBucket struct {
	capacity int
	perMin   int
	now      func() time.Time

	mu    sync.Mutex
	state map[string]*bucket
	swept time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket allows bursts of capacity requests refilled at perMinute.
func NewTokenBucket(capacity, perMinute int) *TokenBucket {
	if capacity <= 0 {
		capacity = perMinute
	}
	return &TokenBucket{
		capacity: capacity,
		perMin:   perMinute,
		now:      time.Now,
		state:    make(map[string]*bucket),
	}
}

// Middleware enforces the limit per client IP.
func (l *TokenBucket) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.Allow(ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "Too many requests, try again later"})
			return
		}
		c.Next()
	}
}

func (l *TokenBucket) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.swept) >= time.Minute {
		l.sweep(now)
	}
	b, ok := l.state[key]
	if !ok {
		l.state[key] = &bucket{tokens: float64(l.capacity - 1), last: now}
		return true
	}

	b.tokens += now.Sub(b.last).Minutes() * float64(l.perMin)
	if b.tokens > float64(l.capacity) {
		b.tokens = float64(l.capacity)
	}
	b.last = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep forgets clients whose bucket has refilled, since a fresh bucket
// behaves the same.
func (l *TokenBucket) sweep(now time.Time) {
	for key, b := range l.state {
		if b.tokens+now.Sub(b.last).Minutes()*float64(l.perMin) >= float64(l.capacity) {
			delete(l.state, key)
		}
	}
	l.swept = now
}
