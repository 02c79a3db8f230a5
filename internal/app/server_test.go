package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"campus_care_backend/internal/auth"
	"campus_care_backend/internal/complaint"
	"campus_care_backend/internal/config"
	"campus_care_backend/internal/filestorage"
	"campus_care_backend/internal/notification"
	"campus_care_backend/internal/platform/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		GinMode:            gin.TestMode,
		ServerPort:         "0",
		CORSAllowedOrigins: "http://localhost:3000, http://localhost:5173",
		JWTSecretKey:       "test-secret",
		ImagePublicBaseURL: "/uploads",
		RateLimitRequests:  5,
		RateLimitBurst:     5,
	}
	logger := zap.NewNop()
	store, err := filestorage.NewLocalStore(dir, cfg.ImagePublicBaseURL, logger)
	require.NoError(t, err)

	handlers := Handlers{
		Complaint:    complaint.NewHandler(nil, cfg, logger),
		Notification: notification.NewHandler(nil, logger),
	}
	srv, err := NewServer(cfg, logger, handlers, auth.NewJWTService(cfg, logger), nil, store, metrics.New(prometheus.NewRegistry()), nil)
	require.NoError(t, err)
	return srv, dir
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UP"`)
}

func TestServer_CampusBlocksArePublic(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/blocks", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_ComplaintRoutesRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/complaints", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_ServesLocalUploads(t *testing.T) {
	srv, dir := newTestServer(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "complaints"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "complaints", "a.jpg"), []byte("jpeg"), 0o644))

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/complaints/a.jpg", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg", w.Body.String())
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, splitOrigins(" , "))
	assert.Equal(t, []string{"a", "b"}, splitOrigins("a, b,"))
	assert.True(t, containsWildcard([]string{"a", "*"}))
}
