package app

import (
	"log/slog"
	"net/http"

	"firewall/internal/audit"
	"firewall/internal/auth"
	"firewall/internal/config"
	"firewall/internal/firewall"
	redisstore "firewall/internal/storage/redis"
	"firewall/pkg/errors"
	"firewall/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Builder assembles the server from configuration
type Builder struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewBuilder creates a server builder
func NewBuilder(cfg *config.Config, logger *slog.Logger) *Builder {
	return &Builder{cfg: cfg, logger: logger}
}

// Build wires the store manager, ledger, collaborators and inspection
// pipeline into a runnable server.
func (b *Builder) Build() (*Server, error) {
	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(registry)

	manager := redisstore.NewManager(&b.cfg.Redis, b.logger)
	manager.OnStateChange = func(connected bool) {
		if connected {
			m.StoreUp.Set(1)
		} else {
			m.StoreUp.Set(0)
		}
	}

	ledger := firewall.NewLedger(manager, &b.cfg.Firewall, b.logger, m)

	recorder, err := b.buildRecorder()
	if err != nil {
		return nil, err
	}

	resolver, err := b.buildResolver()
	if err != nil {
		return nil, err
	}

	fw := firewall.New(ledger, recorder, resolver, &b.cfg.Firewall, b.logger, m)

	mux := http.NewServeMux()
	mux.HandleFunc("/", handleIndex)
	mux.HandleFunc("/system/info", handleSystemInfo)
	mux.HandleFunc("/healthz", handleHealth(manager))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return newServer(b.cfg, b.logger, manager, fw, recorder, resolver, fw.Middleware(mux)), nil
}

func (b *Builder) buildRecorder() (audit.Recorder, error) {
	if b.cfg.Audit.Path == "" {
		b.logger.Info("audit store not configured, violation records will be discarded")
		return audit.NopRecorder{}, nil
	}
	recorder, err := audit.NewSQLiteRecorder(b.cfg.Audit.Path)
	if err != nil {
		return nil, err
	}
	return recorder, nil
}

func (b *Builder) buildResolver() (auth.Resolver, error) {
	switch b.cfg.Auth.Mode {
	case "", "none":
		return nil, nil
	case "sqlite":
		return auth.NewSQLResolver(b.cfg.Auth.Path)
	case "jwt":
		return auth.NewJWTResolver(b.cfg.Auth.JWTSecret), nil
	default:
		return nil, errors.NewError(errors.ErrorTypeBadRequest, "unknown auth mode").WithDetail("mode", b.cfg.Auth.Mode)
	}
}
