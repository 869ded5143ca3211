package middleware

import (
	"net/http"
	"sync"
	"time"

	"backoffice/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const clientTTL = 10 * time.Minute

type clientEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
	limit   rate.Limit
	burst   int
}

// NewPerMinuteLimiter allows perMinute requests per client per minute,
// with bursts up to perMinute.
func NewPerMinuteLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &RateLimiter{
		clients: make(map[string]*clientEntry),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
	}
}

// Allow reports whether clientIP may proceed now.
func (rl *RateLimiter) Allow(clientIP string) bool {
	now := time.Now()

	rl.mu.Lock()
	entry, ok := rl.clients[clientIP]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[clientIP] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	if len(rl.clients) > 1024 {
		rl.evictLocked(now)
	}
	rl.mu.Unlock()

	return limiter.Allow()
}

func (rl *RateLimiter) evictLocked(now time.Time) {
	for ip, e := range rl.clients {
		if now.Sub(e.lastAccess) > clientTTL {
			delete(rl.clients, ip)
		}
	}
}

// RateLimit answers 429 once a client exhausts its bucket.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.Allow(ip) {
			utils.LogEvent(GetRequestID(c), "http", "rate_limit", "rate limit exceeded ip="+ip+" path="+c.Request.URL.Path)
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests",
				"code":       http.StatusText(http.StatusTooManyRequests),
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}
