package firewall

import (
	"context"
	"log/slog"
	"sync/atomic"

	"firewall/internal/config"
	"firewall/internal/storage"
	"firewall/pkg/metrics"
)

// Store key prefixes, suffixed with the raw client identity.
const (
	keyRate      = "fw:rate:" // per-second request counter
	keyViolation = "fw:viol:" // rolling 24h violation counter
	keyBan       = "fw:ban:"  // ban flag
)

// ClientProvider hands out the current store connection, or nil while
// disconnected.
type ClientProvider interface {
	GetClient() storage.Store
}

// Ledger keeps per-client rate, violation and ban state in the shared
// store. Every check fails open: when the store is unavailable or errors,
// the ledger reports no violation rather than blocking traffic, so the
// firewall never becomes a single point of failure for the service.
type Ledger struct {
	provider ClientProvider
	logger   *slog.Logger
	metrics  *metrics.Metrics
	cfg      atomic.Pointer[config.Firewall]
}

// NewLedger creates a ledger over the given store provider. metrics may be
// nil.
func NewLedger(provider ClientProvider, cfg *config.Firewall, logger *slog.Logger, m *metrics.Metrics) *Ledger {
	l := &Ledger{
		provider: provider,
		logger:   logger.With("component", "firewall-ledger"),
		metrics:  m,
	}
	l.cfg.Store(cfg)
	return l
}

// SetConfig swaps the thresholds. Safe to call while requests are in
// flight; used by config hot-reload.
func (l *Ledger) SetConfig(cfg *config.Firewall) {
	l.cfg.Store(cfg)
}

// client returns the current store connection, accounting a degraded check
// when absent.
func (l *Ledger) client() storage.Store {
	c := l.provider.GetClient()
	if c == nil {
		l.logger.Error("store unavailable, protection check failing open")
		if l.metrics != nil {
			l.metrics.StoreDegraded.Inc()
		}
	}
	return c
}

// IsBanned reports whether ip carries an active ban flag.
func (l *Ledger) IsBanned(ctx context.Context, ip string) bool {
	c := l.client()
	if c == nil {
		return false
	}

	banned, err := c.Exists(ctx, keyBan+ip)
	if err != nil {
		l.logger.Error("ban check failed", "ip", ip, "error", err)
		return false
	}
	return banned
}

// IsRateExceeded counts this request against ip's per-second window and
// reports whether the window's threshold is now exceeded. The read and the
// increment are one atomic store operation.
func (l *Ledger) IsRateExceeded(ctx context.Context, ip string) bool {
	c := l.client()
	if c == nil {
		return false
	}
	cfg := l.cfg.Load()

	key := keyRate + ip
	count, err := c.Incr(ctx, key)
	if err != nil {
		l.logger.Error("rate counter increment failed", "ip", ip, "error", err)
		return false
	}
	if count == 1 {
		// First request in a fresh window arms the TTL. Re-arming on every
		// request would keep the window from ever expiring under sustained
		// load. Two concurrent first requests may both land here; both set
		// the same TTL, which is harmless.
		if err := c.Expire(ctx, key, cfg.RateWindowTTL()); err != nil {
			l.logger.Error("rate window arm failed", "ip", ip, "error", err)
		}
	}
	return count > int64(cfg.MaxRequestsPerSecond)
}

// IncrementViolation adds one to ip's violation counter and returns the new
// count. The TTL is refreshed on every increment: the window slides forward
// with continued misbehavior.
func (l *Ledger) IncrementViolation(ctx context.Context, ip string) int64 {
	c := l.client()
	if c == nil {
		return 0
	}
	cfg := l.cfg.Load()

	key := keyViolation + ip
	count, err := c.Incr(ctx, key)
	if err != nil {
		l.logger.Error("violation counter increment failed", "ip", ip, "error", err)
		return 0
	}
	if err := c.Expire(ctx, key, cfg.ViolationWindowTTL()); err != nil {
		l.logger.Error("violation window refresh failed", "ip", ip, "error", err)
	}
	return count
}

// BanIP sets the ban flag for ip. Idempotent: banning an already banned
// client refreshes the expiry.
func (l *Ledger) BanIP(ctx context.Context, ip string) {
	c := l.client()
	if c == nil {
		return
	}
	cfg := l.cfg.Load()

	if err := c.SetEx(ctx, keyBan+ip, "1", cfg.BanDurationTTL()); err != nil {
		l.logger.Error("ban flag write failed", "ip", ip, "error", err)
		return
	}
	l.logger.Warn("ip banned", "ip", ip, "duration", cfg.BanDurationTTL())
	if l.metrics != nil {
		l.metrics.BansTotal.Inc()
	}
}
