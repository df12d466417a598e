// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bookshare_backend/internal/auth"
	"bookshare_backend/internal/book"
	"bookshare_backend/internal/borrow"
	"bookshare_backend/internal/config"
	"bookshare_backend/internal/dashboard"
	"bookshare_backend/internal/filestorage"
	"bookshare_backend/internal/isbn"
	"bookshare_backend/internal/jobs"
	"bookshare_backend/internal/middleware"
	"bookshare_backend/internal/notification"
	"bookshare_backend/internal/profile"
	"bookshare_backend/internal/reading"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups every route module mounted under /api/v1.
type Handlers struct {
	Auth         *auth.Handler
	Profile      *profile.Handler
	Book         *book.Handler
	ISBN         *isbn.Handler
	Borrow       *borrow.Handler
	Notification *notification.Handler
	Reading      *reading.Handler
	Dashboard    *dashboard.Handler
}

// AuthMiddleware is the bearer-token middleware applied to every /api/v1 route.
type AuthMiddleware gin.HandlerFunc

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	auditJob *jobs.ConsistencyAuditJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	handlers Handlers,
	authMW AuthMiddleware,
	covers *filestorage.CoverStore,
	auditJob *jobs.ConsistencyAuditJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	router.Use(middleware.ZapLogger(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	if len(cfg.CORSAllowedOrigins) == 0 || (len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Bookshare API is healthy!"})
	})
	if covers != nil {
		router.Static(filestorage.PublicPrefix, covers.BasePath())
	}

	mw := gin.HandlerFunc(authMW)
	v1 := router.Group("/api/v1")
	handlers.Auth.RegisterRoutes(v1, mw)
	handlers.Profile.RegisterRoutes(v1, mw)
	handlers.ISBN.RegisterRoutes(v1, mw)
	handlers.Book.RegisterRoutes(v1, mw)
	handlers.Borrow.RegisterRoutes(v1, mw)
	handlers.Notification.RegisterRoutes(v1, mw)
	handlers.Reading.RegisterRoutes(v1, mw)
	handlers.Dashboard.RegisterRoutes(v1, mw)

	timeout := cfg.ServerTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		cfg:        cfg,
		logger:     logger,
		auditJob:   auditJob,
	}, nil
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start() error {
	if s.auditJob != nil {
		if err := s.auditJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start consistency audit job", zap.Error(err))
		}
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
	if s.auditJob != nil {
		s.auditJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
