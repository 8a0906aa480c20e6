package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"civicsync/i18n"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const issueLimitWindow = 24 * time.Hour

// IssueRateLimiter caps how many issues each user may post per day.
// It must run after Auth.Required.
func IssueRateLimiter(client redis.Cmdable, queuePrefix string, limit int, messages *i18n.Bundle, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == "" {
			Abort(c, messages, http.StatusUnauthorized, i18n.NotAuthenticated)
			return
		}

		ctx := c.Request.Context()
		userKey := queuePrefix + ":" + userID

		count, err := client.Incr(ctx, userKey).Result()
		if err != nil {
			logger.Error("redis error incrementing count", zap.Error(err))
			Abort(c, messages, http.StatusInternalServerError, i18n.SomethingWentWrong)
			return
		}

		// first post of the window starts the clock
		if count == 1 {
			if err := client.Expire(ctx, userKey, issueLimitWindow).Err(); err != nil {
				logger.Error("redis error setting TTL", zap.Error(err))
				Abort(c, messages, http.StatusInternalServerError, i18n.SomethingWentWrong)
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := client.TTL(ctx, userKey).Result()
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       messages.T(Lang(c), i18n.RateLimited),
				"retry_after": retryAfter.Seconds(),
			})
			return
		}

		c.Next()
	}
}
