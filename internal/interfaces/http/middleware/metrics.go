package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	promx "github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// Metrics records per-request counters, latency histograms and an
// in-flight gauge.  Routed requests are labelled by route template
// (c.FullPath) rather than the raw URL to keep cardinality bounded.
func Metrics(metrics *promx.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			// Unrouted request (404); the raw path would be unbounded.
			path = "unmatched"
		}
		method := c.Request.Method

		metrics.HTTPActiveRequests.WithLabelValues(method, path).Inc()
		start := time.Now()

		c.Next()

		metrics.HTTPActiveRequests.WithLabelValues(method, path).Dec()
		promx.RecordHTTPRequest(metrics, method, path, c.Writer.Status(), time.Since(start))
	}
}

//Personal.AI order the ending
