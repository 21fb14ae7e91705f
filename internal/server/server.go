package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/pageza/grocerly/backend/config"
)

// Server represents the HTTP server
type Server struct {
	http   *http.Server
	logger *log.Logger
}

// New creates a server for handler listening on cfg's address.
// Write timeout leaves room for a full Ollama generation.
func New(cfg *config.Config, handler http.Handler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.OllamaTimeout + 15*time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		logger: logger,
	}
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.http.Addr
}

// Start blocks serving requests until Shutdown is called
func (s *Server) Start() error {
	s.logger.Printf("Server listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
