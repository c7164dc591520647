package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RateLimit picks the Redis limiter when a client is given, otherwise the
// in-process one.
func RateLimit(rdb *redis.Client, maxRequests int, window time.Duration) gin.HandlerFunc {
	if rdb == nil {
		return SimpleRateLimit(maxRequests, window)
	}
	return RedisRateLimit(rdb, maxRequests, window)
}

// RedisRateLimit implements a fixed-window rate limiter using Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<client_ip>
func RedisRateLimit(rdb *redis.Client, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()

		allowed, _, err := incrWindow(c, rdb, key, maxRequests, window)
		if err != nil {
			// fail-open
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if !allowed {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}

// incrWindow counts one hit on key and reports whether it is within limit.
func incrWindow(c *gin.Context, rdb *redis.Client, key string, limit int, window time.Duration) (bool, int64, error) {
	ctx := c.Request.Context()
	val, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if val == 1 {
		rdb.Expire(ctx, key, window)
	}
	return val <= int64(limit), val, nil
}
