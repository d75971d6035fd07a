package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/memodb-io/roombook/internal/telemetry"
)

// Metrics records request counts and latencies by route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		telemetry.HTTPRequests.WithLabelValues(c.Request.Method, route, status).Inc()
		telemetry.HTTPDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}
