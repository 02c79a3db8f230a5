package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests           *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	complaintsCreated  *prometheus.CounterVec
	classifierFallback prometheus.Counter
	duplicates         prometheus.Counter
	notificationsSent  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 30, 120},
			},
			[]string{"method", "path"},
		),
		complaintsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "complaints_created_total",
				Help: "Complaints persisted, by assigned category and priority",
			},
			[]string{"category", "priority"},
		),
		classifierFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "classifier_fallbacks_total",
			Help: "Classifier calls answered with the fallback prediction",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "duplicate_rejections_total",
			Help: "Submissions rejected as duplicates",
		}),
		notificationsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_created_total",
				Help: "In-app notifications written, by type",
			},
			[]string{"type"},
		),
	}
	reg.MustRegister(m.requests, m.requestDuration, m.complaintsCreated, m.classifierFallback, m.duplicates, m.notificationsSent)
	return m
}

// NewDefault registers with the global Prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

func (m *Metrics) ComplaintCreated(category, priority string) {
	if m == nil {
		return
	}
	m.complaintsCreated.WithLabelValues(category, priority).Inc()
}

func (m *Metrics) ClassifierFallback() {
	if m == nil {
		return
	}
	m.classifierFallback.Inc()
}

func (m *Metrics) DuplicateRejected() {
	if m == nil {
		return
	}
	m.duplicates.Inc()
}

func (m *Metrics) NotificationsCreated(notificationType string, n int) {
	if m == nil {
		return
	}
	m.notificationsSent.WithLabelValues(notificationType).Add(float64(n))
}

// Middleware records request counts and latency by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
