package middleware

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "ratelimit:"

// RateLimiterMiddleware enforces a fixed window of limit requests per client
// IP, counted in Redis. Redis being unreachable disables the limiter rather
// than the API.
func RateLimiterMiddleware(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := rateLimitKeyPrefix + c.ClientIP()

		pipe := rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		ttl := pipe.TTL(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("[RATELIMIT] redis unreachable, letting request through: %v", err)
			c.Next()
			return
		}

		count := incr.Val()
		left := ttl.Val()
		if left < 0 {
			// First hit of the window, or a counter stranded without an
			// expiry; either way it gets a fresh window now.
			left = window
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				log.Printf("[RATELIMIT] expire failed, dropping counter: %v", err)
				rdb.Del(ctx, key)
				c.Next()
				return
			}
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(limit)-count), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(left).Unix(), 10))

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(left.Seconds()),
			})
			return
		}

		c.Next()
	}
}
