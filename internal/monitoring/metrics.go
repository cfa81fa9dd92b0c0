package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by app, method, route and status",
	}, []string{"app", "method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"app", "method", "route"})

	HTTPActiveRequests = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_active_requests",
		Help: "Requests currently being served",
	}, []string{"app"})

	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// MetricsMiddleware records request counts and latency for app.
func MetricsMiddleware(app string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		active := HTTPActiveRequests.WithLabelValues(app)
		active.Inc()
		defer active.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(app, c.Request.Method, route, status).Inc()
		HTTPRequestDuration.WithLabelValues(app, c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// TrackQuery returns a function that records query latency when called,
// typically with defer.
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
