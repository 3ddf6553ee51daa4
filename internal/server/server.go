package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipe-ai/backend/internal/middleware"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

// Server represents the HTTP server
type Server struct {
	http   *http.Server
	logger logrus.FieldLogger
	// sweeper is set when rate limits are counted in process memory
	sweeper *middleware.MemoryStore
}

// New creates a server listening on port. store is swept periodically when
// it is an in-memory rate limit store.
func New(port string, handler http.Handler, store middleware.RateLimitStore, logger logrus.FieldLogger) *Server {
	s := &Server{
		http: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
	if mem, ok := store.(*middleware.MemoryStore); ok {
		s.sweeper = mem
	}
	return s
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.http.Addr).Info("starting server")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- errors.Wrap(err, "server failed")
		}
		close(errChan)
	}()

	if s.sweeper != nil {
		go s.sweep(ctx)
	}

	select {
	case err, ok := <-errChan:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown failed")
	}
	s.logger.Info("server stopped")
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweeper.Sweep(middleware.GeneralPolicy.Window)
		}
	}
}
