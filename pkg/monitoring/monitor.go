package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// GatewayOnline 1 表示直连后端，0 表示离线桩
	GatewayOnline = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_online",
			Help: "Whether the backend gateway talks to the live backend (1) or the offline stub (0)",
		},
	)

	GatewayDemotions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_demotions_total",
			Help: "Number of times the gateway switched to the offline stub after a network failure",
		},
		[]string{"operation"},
	)

	QuizRunsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_runs_finished_total",
			Help: "Finished quiz runs by outcome",
		},
		[]string{"kind", "reason"},
	)

	QuizScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_score_percentage",
			Help:    "Distribution of finished quiz percentages",
			Buckets: []float64{10, 25, 50, 75, 90, 100},
		},
	)
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(GatewayOnline)
		prometheus.MustRegister(GatewayDemotions)
		prometheus.MustRegister(QuizRunsFinished)
		prometheus.MustRegister(QuizScore)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
