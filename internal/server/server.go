// Package server exposes compile sessions over HTTP
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/toyz/jointc/internal/config"
	"github.com/toyz/jointc/internal/parser"
	"github.com/toyz/jointc/internal/utils"
)

// Config holds configuration for the compile service
type Config struct {
	// Addr is the listen address (default ":8080", or ":$PORT")
	Addr string

	// BodyLimit caps request bodies, echo notation (default "4M")
	BodyLimit string

	// Options are the compiler defaults requests start from
	Options *config.Options

	// EnableLogger enables request logging middleware
	EnableLogger bool

	// ShutdownTimeout bounds graceful shutdown (default 30s)
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a service configuration with defaults
func DefaultConfig() *Config {
	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	return &Config{
		Addr:            addr,
		BodyLimit:       "4M",
		Options:         config.Default(),
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server wraps an Echo instance serving compile requests. Requests share
// one set of front ends so pooled parsers outlive a single request.
type Server struct {
	echo        *echo.Echo
	config      *Config
	frontEnds   *parser.Registry
	diagnostics *utils.DiagnosticSystem
}

// New creates a server and registers its routes
func New(cfg *Config, diagnostics *utils.DiagnosticSystem) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Options == nil {
		cfg.Options = config.Default()
	}
	if diagnostics == nil {
		diagnostics = utils.NewSilentDiagnostics()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	if cfg.EnableLogger {
		e.Use(middleware.Logger())
	}

	s := &Server{
		echo:        e,
		config:      cfg,
		frontEnds:   parser.DefaultRegistry(),
		diagnostics: diagnostics,
	}
	e.GET("/healthz", s.health)
	e.POST("/v1/compile", s.compile)
	return s
}

// Handler returns the HTTP handler, used by tests and embedding servers
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.diagnostics.Info("listening on %s", s.config.Addr)
		if err := s.echo.Start(s.config.Addr); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.diagnostics.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
