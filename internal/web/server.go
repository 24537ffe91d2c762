// Package web exposes the HTTP JSON API: capture ingestion, task listing,
// lifecycle transitions, bulk approval, and contact lookup. Every route
// under /api/v1 is scoped to the owner resolved from the bearer token.
package web

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tradehand/tradehand/internal/config"
	"github.com/tradehand/tradehand/internal/intent"
)

// Server is the tradehand API server.
type Server struct {
	db     *sql.DB
	cfg    *config.Config
	client intent.Client
	logger *zap.Logger
	router *gin.Engine
}

// NewServer creates and wires the API server.
func NewServer(database *sql.DB, cfg *config.Config, client intent.Client, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		db:     database,
		cfg:    cfg,
		client: client,
		logger: logger,
		router: router,
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(s.requireAuth())
	{
		api.POST("/captures", s.handleSubmitCapture)
		api.GET("/tasks", s.handleListTasks)
		api.PATCH("/tasks/:id", s.handleUpdateTask)
		api.POST("/tasks/bulk-approve", s.handleBulkApprove)
		api.GET("/contacts", s.handleSearchContacts)
		api.POST("/contacts", s.handleCreateContact)
	}

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.Bind, s.cfg.Port),
		Handler: s.router,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("API listening", zap.String("addr", srv.Addr))

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		s.logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}
