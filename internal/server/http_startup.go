package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"jobassist/internal/observability"
)

// Start runs the HTTP server until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}
	defer s.shutdownObservability(om)

	metrics := om.GetMetrics()

	keyWatcher, err := s.startKeyWatcher(ctx, metrics.RecordKeyRotation)
	if err != nil {
		return fmt.Errorf("failed to start vault key watcher: %w", err)
	}
	promptWatcher, err := s.startPromptWatcher(ctx, metrics.RecordPromptReload)
	if err != nil {
		s.stopWatchers(keyWatcher, nil)
		return fmt.Errorf("failed to start prompt watcher: %w", err)
	}
	defer s.stopWatchers(keyWatcher, promptWatcher)

	httpServer := s.setupHTTPServer(om)

	s.displayServerInfo()

	return s.serve(ctx, httpServer, nil)
}

// initializeObservability sets up observability components
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	obsConfig := observability.GetObservabilityConfig(s.AppConfig, s.Version)

	om, err := observability.NewObservabilityManager(obsConfig, s.AppConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	return om, nil
}

// shutdownObservability handles observability cleanup
func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) *http.Server {
	mux := s.setupRoutes(om)
	handler := om.HTTPMiddleware()(mux)

	return &http.Server{
		Addr:         net.JoinHostPort(s.Host, s.Port),
		Handler:      handler,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// serve runs server until ctx is done, then shuts it down gracefully.
// A nil listener means the server listens on its own address.
func (s *Server) serve(ctx context.Context, server *http.Server, listener net.Listener) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server", "address", server.Addr)

		var err error
		if listener != nil {
			err = server.Serve(listener)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.cleanup()
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.Logger.Info("Shutdown requested, starting graceful shutdown")
		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.Logger.Info("Shutting down HTTP server...")
	err := server.Shutdown(shutdownCtx)
	s.cleanup()
	if err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanup releases the rate limiter and AI providers
func (s *Server) cleanup() {
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
	if err := s.providers.close(); err != nil {
		s.Logger.LogError(err, "Failed to close AI providers")
	}
}

func (s *Server) stopWatchers(keyWatcher *VaultWatcher, promptWatcher *PromptWatcher) {
	if keyWatcher != nil {
		if err := keyWatcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop vault key watcher")
		}
	}
	if promptWatcher != nil {
		if err := promptWatcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop prompt watcher")
		}
	}
}
