package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

// unmatchedRoute labels requests that matched no route.
const unmatchedRoute = "unmatched"

// HTTPMetrics records HTTP request metrics.
type HTTPMetrics interface {
	IncrementActiveRequestsCounter(ctx context.Context)
	DecrementActiveRequestsCounter(ctx context.Context)
	IncrementHTTPRequestCounter(ctx context.Context)
	// RecordHTTPRequestDuration records a finished request under its route template.
	RecordHTTPRequestDuration(ctx context.Context, duration time.Duration, route, method string, status int)
}

// ActiveRequests tracks in-flight requests and records each finished request under its route
// template, e.g. /analysis/:videoId/:network, rather than the raw path.
func ActiveRequests(metrics HTTPMetrics, lggr logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		metrics.IncrementActiveRequestsCounter(ctx)
		metrics.IncrementHTTPRequestCounter(ctx)
		start := time.Now()

		defer func() {
			metrics.DecrementActiveRequestsCounter(ctx)
			route := c.FullPath()
			if route == "" {
				route = unmatchedRoute
			}
			duration := time.Since(start)
			metrics.RecordHTTPRequestDuration(ctx, duration, route, c.Request.Method, c.Writer.Status())
			lggr.Debugw("Request completed",
				"requestID", RequestIDFrom(c),
				"method", c.Request.Method,
				"route", route,
				"status", c.Writer.Status(),
				"duration_ms", duration.Milliseconds(),
			)
		}()

		c.Next()
	}
}
