package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClientIP identifies the caller for rate limiting, preferring the headers
// set by the CDN and proxies in front of the service.
func ClientIP(c *gin.Context) string {
	if ip := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// RateLimiterMiddleware allows limit requests per client per window. The
// scope keeps separately limited route groups from sharing counters. Store
// errors let the request through.
func RateLimiterMiddleware(store domain.RateLimitStore, scope string, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("rate_limiter")

	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", scope, ClientIP(c))

		count, ttl, err := store.Hit(c.Request.Context(), key, window)
		if err != nil {
			logger.Warn("rate limit store error, skipping", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		resetTime := time.Now().Add(ttl).Unix()
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(limit)-count), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime, 10))

		if count > int64(limit) {
			retryAfter := max(1, int(ttl.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests",
				"retry_in_s": retryAfter,
			})
			return
		}

		c.Next()
	}
}
