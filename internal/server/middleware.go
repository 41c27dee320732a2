package server

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	obsmiddleware "github.com/givebridge/givebridge/internal/observability/logger"
)

// IntentRateLimit throttles intent creation per client address. When
// the limiter backend is unreachable the request is let through, a
// broken Redis must not take donations down with it.
func (s *Server) IntentRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.intentLimiter.Enabled() {
			c.Next()
			return
		}

		result, err := s.intentLimiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			obsmiddleware.FromContext(c.Request.Context()).Warn("rate limiter unavailable",
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !result.Allowed {
			if result.RetryAfter > 0 {
				c.Header("Retry-After", formatRetryAfter(result.RetryAfter))
			}
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		c.Next()
	}
}

func formatRetryAfter(d time.Duration) string {
	seconds := int64(math.Ceil(d.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.FormatInt(seconds, 10)
}
