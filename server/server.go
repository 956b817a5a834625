package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Config is the "http" block of an application configuration. It is bound
// by the config package, so field tags follow that package's conventions.
type Config struct {
	Host            string        `validate:"notblank"`
	Port            int32         `validate:"min=1,max=65535"`
	IdleTimeout     time.Duration `validate:"notnull"`
	ShutdownTimeout time.Duration `validate:"notnull"`
}

// Addr is host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}

type Server struct {
	cfg     Config
	logger  *slog.Logger
	handler http.Handler
	httpSrv *http.Server
}

func New(cfg Config, logger *slog.Logger, handler http.Handler) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		handler: handler,
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("server: failed to listen: %w", err)
	}
	return s.Serve(ctx, lis)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errChan := make(chan error, 1)

	s.httpSrv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	go func() {
		s.logger.InfoContext(ctx, "HTTP server starting", "addr", lis.Addr().String())
		if err := s.httpSrv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server: http server failed: %w", err)
		}
	}()

	// Wait for Shutdown
	select {
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "Shutting down server...")
		return s.shutdown()
	case err := <-errChan:
		return err
	}
}

func (s *Server) shutdown() error {
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP shutdown error", "error", err)
		return err
	}
	return nil
}
