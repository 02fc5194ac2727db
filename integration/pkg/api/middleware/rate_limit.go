package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
)

// RateLimit limits requests per client IP to rate. A zero rate disables limiting.
func RateLimit(lggr logger.Logger, rate limiter.Rate) gin.HandlerFunc {
	if rate.Limit <= 0 || rate.Period <= 0 {
		lggr.Warn("Rate limiting is not enabled")
		return func(c *gin.Context) {
			c.Next()
		}
	}

	lggr.Infow("Rate limiting enabled", "limit", rate.Limit, "period", rate.Period)
	instance := limiter.New(memory.NewStore(), rate)
	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "error": "Too many requests"})
	}))
}
