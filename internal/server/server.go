package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/neekaru/washgate/internal/app"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	app    *app.App

	mu  sync.Mutex
	srv *http.Server
}

// NewServer creates a new server instance. Gin's access log goes to logWriter
// as well as the console.
func NewServer(app *app.App, logWriter io.Writer) *Server {
	if logWriter == nil {
		logWriter = os.Stdout
	}
	gin.DefaultWriter = logWriter
	gin.DefaultErrorWriter = io.MultiWriter(os.Stderr, logWriter)

	if app.Config.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(app.Config.GetCorsConfig()))

	return &Server{
		router: r,
		app:    app,
	}
}

// Router returns the gin router
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server in the background
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:              ":" + s.app.Config.ServerPort,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	s.srv = srv
	s.mu.Unlock()

	go func() {
		s.app.Logger.Info().Str("port", s.app.Config.ServerPort).Msg("🚿 Gate scanner running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.app.Logger.Error().Err(err).Msg("Server error")
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	s.app.Logger.Info().Msg("🚫 Shutting down server...")
	if err := srv.Shutdown(ctx); err != nil {
		s.app.Logger.Error().Err(err).Msg("Server forced to shutdown")
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.app.Logger.Info().Msg("Server exited")
	return nil
}
