package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// goalsComputed counts goal computations by result ("ok" or "invalid").
	goalsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "diet_goals_computed_total",
		Help: "Total nutrition goal computations by result",
	}, []string{"result"})

	// diaryEntries counts logged entries by kind (meal, exercise, water, weight, custom_food).
	diaryEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "diet_diary_entries_total",
		Help: "Total diary entries created by kind",
	}, []string{"kind"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "diet_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	}, []string{"method", "route", "status"})
)

func metricsHandler() http.Handler {
	return promhttp.Handler()
}

// metricsMiddleware observes request latency per matched route. Unmatched
// paths are grouped under "unmatched" to keep label cardinality bounded.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
