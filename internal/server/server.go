// HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Config holds HTTP server configuration.
type Config struct {
	Host        string
	Port        int
	ReadTimeout time.Duration
	IdleTimeout time.Duration
}

// DefaultConfig returns default HTTP server configuration.
// There is deliberately no write timeout: the MCP endpoint streams
// event-stream responses that stay open for the life of a session.
func DefaultConfig() Config {
	return Config{
		Host:        "0.0.0.0",
		Port:        8080,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
}

// Server wraps the HTTP server around the router.
type Server struct {
	config Config
	http   *http.Server
	logger *slog.Logger
}

// NewServer creates the HTTP server for handler. logger may be nil.
func NewServer(handler http.Handler, config Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	httpServer := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:     handler,
		ReadTimeout: config.ReadTimeout,
		IdleTimeout: config.IdleTimeout,
	}

	return &Server{
		config: config,
		http:   httpServer,
		logger: logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
// Returns nil on a clean Shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting HTTP server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}
