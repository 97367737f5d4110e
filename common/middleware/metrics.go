package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	awspkg "github.com/yashrajoria/storefront-backend/pkg/aws"
)

// Metrics records request count, latency and error class per route.
// Data points are sent off the request path.
func Metrics(rec awspkg.Recorder, service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		dims := map[string]string{
			"Service": service,
			"Method":  c.Request.Method,
			"Route":   route,
			"Status":  statusClass(status),
		}
		elapsed := time.Since(start)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = rec.RecordCount(ctx, awspkg.MetricHTTPRequests, dims)
			_ = rec.RecordLatency(ctx, awspkg.MetricHTTPLatency, elapsed, dims)
			switch {
			case status >= 500:
				_ = rec.RecordCount(ctx, awspkg.MetricHTTP5xx, dims)
			case status >= 400:
				_ = rec.RecordCount(ctx, awspkg.MetricHTTP4xx, dims)
			}
		}()
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "unknown"
	}
}
