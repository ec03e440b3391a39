package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/licensing/internal/shared/constants"
	"github.com/orris-inc/licensing/internal/shared/logger"
	"github.com/orris-inc/licensing/internal/shared/utils"
)

// RateLimiter is a Redis fixed-window counter shared by every instance.
// Requests are keyed by the acting user, falling back to the client IP.
type RateLimiter struct {
	client *redis.Client
	scope  string
	limit  int
	window time.Duration
	logger logger.Interface
}

func NewRateLimiter(client *redis.Client, scope string, limit int, window time.Duration, logger logger.Interface) *RateLimiter {
	return &RateLimiter{
		client: client,
		scope:  scope,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

func (rl *RateLimiter) key(c *gin.Context) string {
	bucket := time.Now().Unix() / int64(rl.window.Seconds())
	if userID, ok := c.Get(constants.ContextKeyUserID); ok {
		return fmt.Sprintf("ratelimit:%s:user:%v:%d", rl.scope, userID, bucket)
	}
	return fmt.Sprintf("ratelimit:%s:ip:%s:%d", rl.scope, c.ClientIP(), bucket)
}

func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.client == nil || rl.limit <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := rl.key(c)
		count, err := rl.client.Incr(ctx, key).Result()
		if err != nil {
			// fail open while redis is unavailable
			rl.logger.Warnw("rate limiter unavailable", "scope", rl.scope, "error", err)
			c.Next()
			return
		}
		if count == 1 {
			rl.client.Expire(ctx, key, rl.window+time.Second)
		}

		if count > int64(rl.limit) {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
