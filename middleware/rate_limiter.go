package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter holds one token bucket per client IP. A bucket refills completely within a
// minute, so buckets idle for longer are dropped and recreated on the next request.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*visitor
	every     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
	logger    *zap.Logger
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per IP per minute, all of which may arrive at once.
// A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute int, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &RateLimiter{
		limiters: make(map[string]*visitor),
		every:    rate.Inf,
		burst:    perMinute,
		idle:     time.Minute,
		now:      time.Now,
		logger:   logger,
	}
	if perMinute > 0 {
		l.every = rate.Every(time.Minute / time.Duration(perMinute))
	}
	l.lastSweep = l.now()
	return l
}

// Allow reports whether ip may make another request now.
func (l *RateLimiter) Allow(ip string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idle {
		for key, v := range l.limiters {
			if now.Sub(v.lastSeen) >= l.idle {
				delete(l.limiters, key)
			}
		}
		l.lastSweep = now
	}

	v, exists := l.limiters[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.limiters[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Size is the number of IPs currently tracked.
func (l *RateLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Middleware rejects requests from an IP that has used up its allowance. reject writes the
// response for a rejected request; nil answers 429 with a JSON message.
func (l *RateLimiter) Middleware(reject gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.Allow(ip) {
			l.logger.Warn("Rate limit exceeded", zap.String("ip", ip), zap.String("request_id", GetRequestID(c)))
			if reject == nil {
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests. Try again later."})
				return
			}
			reject(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
