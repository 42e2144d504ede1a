package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookstore-checkout/pkg/metrics"
	"github.com/xiebiao/bookstore-checkout/pkg/tracing"
)

// Metrics 请求数、耗时、并发数
// path取路由模板(/api/v1/orders/:id),未匹配的路由记为unmatched
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !metrics.Enabled() {
			c.Next()
			return
		}
		metrics.HTTPRequestsInProgress.Inc()
		defer metrics.HTTPRequestsInProgress.Dec()

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// Tracing 每个请求一个根span
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.FullPath()
		if name == "" {
			name = c.Request.URL.Path
		}
		ctx, span := tracing.StartSpan(c.Request.Context(), c.Request.Method+" "+name)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
