// internal/middleware/rate_limit_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/greenhydro/subsidy-backend/internal/config"
)

func limitedRouter(limiter *IPRateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func pingFrom(r *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitBurstExhaustion(t *testing.T) {
	r := limitedRouter(NewIPRateLimiter(rate.Limit(1), 3))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, pingFrom(r, "192.0.2.1:1234"))
	}
	assert.Equal(t, http.StatusTooManyRequests, pingFrom(r, "192.0.2.1:1234"))
}

func TestRateLimitBucketsArePerClient(t *testing.T) {
	r := limitedRouter(NewIPRateLimiter(rate.Limit(1), 1))

	assert.Equal(t, http.StatusOK, pingFrom(r, "192.0.2.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, pingFrom(r, "192.0.2.1:1234"))

	// A different address gets its own bucket.
	assert.Equal(t, http.StatusOK, pingFrom(r, "192.0.2.2:1234"))
}

func TestRateLimitsBuiltFromConfig(t *testing.T) {
	cfg := &config.Config{
		RateLimit: config.RateLimitConfig{
			GeneralPerSecond: 5,
			GeneralBurst:     2,
			AuthPerMinute:    1,
			UploadPerMinute:  1,
		},
	}
	limits := NewRateLimits(cfg)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/token", limits.Auth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/auth/token", nil)
	req.RemoteAddr = "198.51.100.7:4321"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
