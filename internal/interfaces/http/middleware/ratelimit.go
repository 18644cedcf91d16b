package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tierworks/sellertiers/internal/shared/constants"
	"github.com/tierworks/sellertiers/internal/shared/logger"
	"github.com/tierworks/sellertiers/internal/shared/utils"
)

type limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
	Limit() int
}

type RateLimitMiddleware struct {
	limiter limiter
	logger  logger.Interface
}

func NewRateLimitMiddleware(limiter limiter, logger logger.Interface) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		logger:  logger,
	}
}

// PerSeller limits by the authenticated seller, falling back to the client
// IP. If Redis is unavailable the request is let through.
func (m *RateLimitMiddleware) PerSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(constants.ContextKeyUserID)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		allowed, remaining, err := m.limiter.Allow(c.Request.Context(), key)
		if err != nil {
			m.logger.Warnw("rate limiter unavailable, allowing request", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(m.limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			m.logger.Warnw("rate limit exceeded", "key", key, "path", c.Request.URL.Path)
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
