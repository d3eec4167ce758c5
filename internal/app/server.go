package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"firewall/internal/audit"
	"firewall/internal/auth"
	"firewall/internal/config"
	"firewall/internal/firewall"
	redisstore "firewall/internal/storage/redis"
	"firewall/pkg/errors"
)

// Server owns the HTTP listener and the firewall's supporting services.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *redisstore.Manager
	fw       *firewall.Firewall
	recorder audit.Recorder
	resolver auth.Resolver
	http     *http.Server
}

// NewServer creates a server from configuration.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	return NewBuilder(cfg, logger).Build()
}

func newServer(cfg *config.Config, logger *slog.Logger, store *redisstore.Manager, fw *firewall.Firewall, recorder audit.Recorder, resolver auth.Resolver, handler http.Handler) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		fw:       fw,
		recorder: recorder,
		resolver: resolver,
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		},
	}
}

// ApplyConfig swaps the firewall thresholds from a freshly loaded
// configuration. Server and store settings require a restart and are
// ignored here.
func (s *Server) ApplyConfig(cfg *config.Config) error {
	s.fw.SetConfig(&cfg.Firewall)
	s.logger.Info("firewall thresholds applied",
		"maxRequestsPerSecond", cfg.Firewall.MaxRequestsPerSecond,
		"banThreshold", cfg.Firewall.BanThreshold,
	)
	return nil
}

// Start connects the shared store and begins serving. Non-blocking: the
// listener runs in the background until Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.store.Start()

	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return errors.NewError(errors.ErrorTypeInternal, "failed to listen").WithDetail("addr", s.http.Addr).WithCause(err)
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server stopped", "error", err)
		}
	}()

	s.logger.Info("firewall listening", "addr", s.http.Addr)
	return nil
}

// Stop gracefully shuts down the listener, then the store manager and the
// collaborators.
func (s *Server) Stop(ctx context.Context) error {
	var firstErr error

	if err := s.http.Shutdown(ctx); err != nil {
		firstErr = err
	}

	s.store.Stop()

	if closer, ok := s.recorder.(io.Closer); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if closer, ok := s.resolver.(io.Closer); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.logger.Info("server stopped")
	return firstErr
}
