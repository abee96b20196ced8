// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/greenhydro/subsidy-backend/internal/config"
)

// IPRateLimiter keeps one token bucket per client IP. Buckets for addresses
// not seen in a while are dropped by a background janitor.
type IPRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	limit   rate.Limit
	burst   int
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const staleClientAfter = 3 * time.Minute

func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	l := &IPRateLimiter{
		clients: make(map[string]*clientBucket),
		limit:   limit,
		burst:   burst,
	}
	go l.evictStale()
	return l
}

func (l *IPRateLimiter) evictStale() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		for ip, bucket := range l.clients {
			if time.Since(bucket.lastSeen) > staleClientAfter {
				delete(l.clients, ip)
			}
		}
		l.mu.Unlock()
	}
}

// Allow reports whether the given IP may make another request now.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	bucket, ok := l.clients[ip]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = bucket
	}
	bucket.lastSeen = time.Now()
	l.mu.Unlock()

	return bucket.limiter.Allow()
}

func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimits bundles the per-surface limiters built from configuration:
// a general budget for the whole API plus tighter buckets for token
// issuance and file uploads.
type RateLimits struct {
	general *IPRateLimiter
	auth    *IPRateLimiter
	upload  *IPRateLimiter
}

func NewRateLimits(cfg *config.Config) *RateLimits {
	return &RateLimits{
		general: NewIPRateLimiter(rate.Limit(cfg.RateLimit.GeneralPerSecond), cfg.RateLimit.GeneralBurst),
		auth:    NewIPRateLimiter(perMinute(cfg.RateLimit.AuthPerMinute), cfg.RateLimit.AuthPerMinute),
		upload:  NewIPRateLimiter(perMinute(cfg.RateLimit.UploadPerMinute), cfg.RateLimit.UploadPerMinute),
	}
}

func perMinute(n int) rate.Limit {
	if n < 1 {
		n = 1
	}
	return rate.Every(time.Minute / time.Duration(n))
}

func (r *RateLimits) General() gin.HandlerFunc {
	return r.general.Middleware()
}

func (r *RateLimits) Auth() gin.HandlerFunc {
	return r.auth.Middleware()
}

func (r *RateLimits) Upload() gin.HandlerFunc {
	return r.upload.Middleware()
}
