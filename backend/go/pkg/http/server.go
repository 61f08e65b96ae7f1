package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"llm_relay/backend/go/internal/config"
	"llm_relay/backend/go/pkg/circuitbreaker"
	"llm_relay/backend/go/pkg/logger"
)

// Middleware defines a function to wrap an http.Handler.
type Middleware func(http.Handler) http.Handler

// Server is a custom HTTP server that wraps the standard http.Server
// and applies a middleware chain around the application handler.
type Server struct {
	httpServer  *http.Server
	middlewares []Middleware
	log         *logger.Logger
}

// ServerOption defines a function for configuring a Server.
type ServerOption func(*Server)

// WithAddress sets the address for the server to listen on.
func WithAddress(addr string) ServerOption {
	return func(s *Server) {
		s.httpServer.Addr = addr
	}
}

// WithMiddleware appends middlewares; the first one added is the outermost.
func WithMiddleware(mw ...Middleware) ServerOption {
	return func(s *Server) {
		s.middlewares = append(s.middlewares, mw...)
	}
}

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(log *logger.Logger) ServerOption {
	return func(s *Server) {
		s.log = log
	}
}

// NewServer wraps handler (typically a gin engine) with the configured middlewares.
func NewServer(handler http.Handler, opts ...ServerOption) *Server {
	srv := &Server{
		httpServer: &http.Server{
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(srv)
	}

	// Apply all middlewares in reverse order
	for i := len(srv.middlewares) - 1; i >= 0; i-- {
		handler = srv.middlewares[i](handler)
	}
	srv.httpServer.Handler = handler

	if srv.httpServer.Addr == "" {
		srv.httpServer.Addr = config.DefaultAddress
	}
	if srv.log == nil {
		srv.log = logger.New("http", "")
	}
	return srv
}

// Addr returns the listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// ListenAndServe starts the HTTP server. It returns nil after a graceful Shutdown.
func (s *Server) ListenAndServe() error {
	s.log.Info(fmt.Sprintf("Starting server on %s", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// NewCircuitBreaker initializes a circuit breaker based on the configuration.
// It returns nil when the breaker is disabled.
func NewCircuitBreaker(cfg config.CircuitBreakerConfig) (circuitbreaker.CircuitBreaker, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid circuit breaker timeout duration: %w", err)
	}
	return circuitbreaker.New(cfg.FailureThreshold, cfg.SuccessThreshold, timeout), nil
}
