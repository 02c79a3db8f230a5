package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/complaints/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/complaints/abc", nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/complaints/:id", "200")))
}

func TestDomainCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ComplaintCreated("Chair", "Medium")
	m.ClassifierFallback()
	m.DuplicateRejected()
	m.NotificationsCreated("warning", 4)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.complaintsCreated.WithLabelValues("Chair", "Medium")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.classifierFallback))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.duplicates))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.notificationsSent.WithLabelValues("warning")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ComplaintCreated("Other", "Medium")
		m.ClassifierFallback()
		m.DuplicateRejected()
		m.NotificationsCreated("info", 1)
	})
}
