// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"campus_care_backend/internal/auth"
	"campus_care_backend/internal/campus"
	"campus_care_backend/internal/common"
	"campus_care_backend/internal/complaint"
	"campus_care_backend/internal/config"
	"campus_care_backend/internal/filestorage"
	"campus_care_backend/internal/jobs"
	"campus_care_backend/internal/middleware"
	"campus_care_backend/internal/notification"
	"campus_care_backend/internal/platform/metrics"
	"campus_care_backend/internal/report"
	"campus_care_backend/internal/settings"
	"campus_care_backend/internal/shared"
	"campus_care_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted under /api/v1.
type Handlers struct {
	User         *user.Handler
	Auth         *auth.Handler
	Complaint    *complaint.Handler
	Report       *report.Handler
	Settings     *settings.Handler
	Notification *notification.Handler
}

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Jobs
	escalationJob *jobs.EscalationJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	handlers Handlers,
	tokenService shared.TokenService,
	blocklist auth.TokenBlocklistService,
	images filestorage.ImageStore,
	m *metrics.Metrics,
	escalationJob *jobs.EscalationJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	router.Use(m.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitOrigins(cfg.CORSAllowedOrigins)
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = !containsWildcard(corsConfig.AllowOrigins)
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(tokenService, blocklist, logger.Named("AuthMiddleware"))
	submitLimit := middleware.NewIPRateLimiter(cfg.RateLimitRequests, cfg.RateLimitBurst).Middleware()

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Campus Care API is healthy!"})
	})
	router.GET("/metrics", metrics.Handler())

	if local, ok := images.(*filestorage.LocalStore); ok && strings.HasPrefix(cfg.ImagePublicBaseURL, "/") {
		router.Static(cfg.ImagePublicBaseURL, local.Root())
	}

	v1 := router.Group("/api/v1")
	campus.RegisterRoutes(v1)

	if handlers.Auth != nil {
		handlers.Auth.RegisterRoutes(v1, authMW)
	}
	if handlers.User != nil {
		handlers.User.RegisterRoutes(v1, authMW)
	}
	if handlers.Complaint != nil {
		handlers.Complaint.RegisterRoutes(v1, authMW, submitLimit)
	}
	if handlers.Report != nil {
		handlers.Report.RegisterRoutes(v1, authMW)
	}
	if handlers.Settings != nil {
		admin := v1.Group("/admin", authMW, middleware.RoleAuthMiddleware(common.RoleAdmin))
		handlers.Settings.RegisterRoutes(admin)
	}
	if handlers.Notification != nil {
		handlers.Notification.RegisterRoutes(v1, authMW)
	} else {
		logger.Warn("Notification handler is nil, routes will not be registered.")
	}

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second, // classifier calls and PDF renders run inline
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:    httpServer,
		router:        router,
		cfg:           cfg,
		logger:        logger,
		escalationJob: escalationJob,
	}, nil
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine { return s.router }

func (s *Server) Start() error {
	if s.escalationJob != nil {
		if err := s.escalationJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start escalation job", zap.Error(err))
		}
	} else {
		s.logger.Info("Escalation job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.escalationJob != nil {
		s.escalationJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
