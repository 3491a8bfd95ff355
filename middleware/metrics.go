package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "floor",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpRequestDurationMS = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "floor",
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"route", "method"})
)

// Metrics records request counts and latency per matched route
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDurationMS.WithLabelValues(route, c.Request.Method).Observe(float64(time.Since(start).Milliseconds()))
	}
}
