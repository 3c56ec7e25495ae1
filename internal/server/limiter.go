package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimiter throttles room creation and joins per client IP through redis,
// so the limit holds across instances. With no client configured it admits
// everything, and redis failures fail open: an unavailable limiter should
// never take the game down.
type rateLimiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

func newRateLimiter(rdb *redis.Client) *rateLimiter {
	return &rateLimiter{
		rdb:    rdb,
		limit:  30,
		window: time.Minute,
	}
}

func (l *rateLimiter) allow(c *gin.Context, action string) bool {
	if l.rdb == nil {
		return true
	}
	key := fmt.Sprintf("ratelimit:%s:%s", action, c.ClientIP())
	count, err := l.rdb.Incr(c.Request.Context(), key).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		l.rdb.Expire(c.Request.Context(), key, l.window)
	}
	return count <= l.limit
}

func (s *Server) enforceRateLimit(c *gin.Context, action string) bool {
	if s.limiter.allow(c, action) {
		return true
	}
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	return false
}
