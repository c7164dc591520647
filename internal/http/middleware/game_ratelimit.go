package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// UserRateLimit limits requests per user (not per IP) using Redis.
// Requires JWT middleware to run before this. Without Redis it is a no-op.
func UserRateLimit(rdb *redis.Client, scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		userID := c.GetString("user_id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key := "user_rl:" + scope + ":" + userID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		allowed, val, err := incrWindow(c, rdb, key, maxRequests, window)
		if err != nil {
			c.Header("X-UserRateLimit-Error", "redis-error")
			c.Next()
			return
		}

		c.Header("X-UserRateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-UserRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if !allowed {
			RLBlocked.WithLabelValues(scope).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded for " + scope,
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues(scope).Inc()
		c.Next()
	}
}
