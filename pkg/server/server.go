// Package server wires the HTTP surface: routing, middleware, and
// lifecycle for the search and consultation API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	concordia "github.com/lusotexts/concordia"
	"github.com/lusotexts/concordia/pkg/config"
	"github.com/lusotexts/concordia/pkg/server/handlers"
)

// Server represents the HTTP server.
type Server struct {
	config *config.Config
	router *gin.Engine
	client concordia.Concordia
	logger *slog.Logger
	server *http.Server
}

// New creates a new server instance.
func New(cfg *config.Config, client concordia.Concordia, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{config: cfg, client: client, logger: logger}
}

// Setup sets up routes and middleware.
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(requestIDMiddleware())
	s.router.Use(logMiddleware(s.logger))

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler()
	searchHandler := handlers.NewSearchHandler(s.client)
	consultHandler := handlers.NewConsultHandler(s.client)

	s.router.GET("/health", healthHandler.HealthCheck)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/search", searchHandler.Search)
		v1.POST("/search", searchHandler.Search)
		v1.GET("/stats", searchHandler.Stats)
		v1.POST("/consult", consultHandler.Consult)
	}
}

// Router exposes the configured engine, mainly for tests.
func (s *Server) Router() http.Handler { return s.router }

// Start starts the server.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping server")
	return s.server.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func logMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String())
	}
}
