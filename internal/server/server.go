package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/muurk/thermabridge/internal/logging"
	"go.uber.org/zap"
)

// Config holds the listener configuration shared by the portal and the
// diagnostics server.
type Config struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig listens on port 80 on every interface.
func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":80",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// httpServer runs one http.Server in the background.
type httpServer struct {
	name string
	cfg  Config

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	wg       sync.WaitGroup
}

func newHTTPServer(name string, cfg Config) *httpServer {
	return &httpServer{name: name, cfg: cfg}
}

// start binds the listener and serves handler in the background. It
// returns once the socket is bound so callers can rely on Addr.
func (s *httpServer) start(handler http.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return fmt.Errorf("%s server already running", s.name)
	}

	listener, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
	}

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	s.srv = srv
	s.listener = listener

	logging.Info("Starting HTTP server",
		zap.String("server", s.name),
		zap.String("addr", listener.Addr().String()),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("HTTP server failed",
				zap.String("server", s.name),
				zap.Error(err),
			)
		}
	}()
	return nil
}

// addr returns the bound address, or "" when not running.
func (s *httpServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// running reports whether the server has been started and not shut down.
func (s *httpServer) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.srv != nil
}

// shutdown stops the server gracefully. Shutting down a server that is not
// running is a no-op.
func (s *httpServer) shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.listener = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	logging.Info("Shutting down HTTP server", zap.String("server", s.name))

	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}

	err := srv.Shutdown(ctx)
	if err != nil {
		logging.Warn("Graceful shutdown failed, forcing close",
			zap.String("server", s.name),
			zap.Error(err),
		)
		_ = srv.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, serve loop still running", zap.String("server", s.name))
	}
	return err
}
