// Package server exposes the reranker over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/soundprediction/retrievals/pkg/config"
	"github.com/soundprediction/retrievals/pkg/reranker"
	"github.com/soundprediction/retrievals/pkg/server/handlers"
	"github.com/soundprediction/retrievals/pkg/telemetry"
)

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	router   *gin.Engine
	reranker reranker.Client
	scores   *telemetry.ScoreWriter
	logger   *slog.Logger
	server   *http.Server
}

// New creates a new server instance. scores and logger may be nil.
func New(cfg *config.Config, client reranker.Client, scores *telemetry.ScoreWriter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:   cfg,
		reranker: client,
		scores:   scores,
		logger:   logger,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	// Set gin mode
	gin.SetMode(s.config.Server.Mode)

	// Create router
	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(requestIDMiddleware())

	// Setup routes
	s.setupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// Router returns the configured gin engine. Setup must be called first.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	// Create handlers
	healthHandler := handlers.NewHealthHandler()
	rerankHandler := handlers.NewRerankHandler(s.reranker, s.scores, s.logger, s.config.Reranker.Provider, s.config.Reranker.Model)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck) // Kubernetes liveness probe

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/rerank", rerankHandler.Rerank)
		v1.POST("/score", rerankHandler.ComputeScore)
	}
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping server")
	if s.scores != nil {
		if err := s.scores.Flush(); err != nil {
			s.logger.Warn("failed to flush score telemetry", "error", err)
		}
	}
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware tags every request with an ID, honoring one supplied
// by the caller
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}
