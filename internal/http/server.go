package http

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/quantumauth-io/quantum-go-utils/log"
)

type Server struct {
	srv *http.Server
}

func NewServer(host, port string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}}
}

func (s *Server) Addr() string { return s.srv.Addr }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server error", "error", err)
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	log.Info("HTTP server gracefully stopped")
	return nil
}
