package httpmiddleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"trainlog/internal/metrics"
)

// Metrics records request counts and latency per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.HTTPDuration.Observe(time.Since(start).Seconds())
	}
}
