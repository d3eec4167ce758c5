package firewall

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"firewall/internal/audit"
	"firewall/internal/auth"
	"firewall/internal/config"
	"firewall/pkg/metrics"
	"github.com/google/uuid"
)

// Violation kinds recorded to the audit trail. Payload violations use the
// detector's classification ("xss", "sql_injection") instead.
const (
	KindRateLimit = "rate_limit"
	KindCrawler   = "crawler"
)

// Reject reasons are a stable contract for client-facing error messages;
// every rejection is an HTTP 403 with a JSON body carrying one of these.
const (
	ReasonBanned  = "your ip address is banned due to repeated violations, try again in 24 hours"
	ReasonRate    = "request rate limit exceeded, slow down and try again later"
	ReasonCrawler = "automated crawler access is not allowed"
	ReasonPayload = "request contains disallowed content and has been blocked"
)

// rejection is the terminal result of a pipeline stage. kind is empty for
// ban rejections, which are not themselves counted as new violations.
type rejection struct {
	kind   string
	reason string
}

// stage inspects one aspect of a request and either passes (nil) or
// terminates the pipeline with a rejection.
type stage func(ctx context.Context, r *http.Request, ip string) *rejection

// Firewall screens every inbound request before it reaches application
// handlers. Stages run in a fixed order and short-circuit on the first
// violation; a violation is audited, counted, and escalated to a ban once
// the client crosses the violation threshold.
type Firewall struct {
	ledger   *Ledger
	recorder audit.Recorder
	resolver auth.Resolver
	metrics  *metrics.Metrics
	logger   *slog.Logger
	cfg      atomic.Pointer[config.Firewall]
	stages   []stage
}

// New creates a firewall. recorder, resolver and m may be nil, disabling
// audit persistence, user resolution and metrics respectively.
func New(ledger *Ledger, recorder audit.Recorder, resolver auth.Resolver, cfg *config.Firewall, logger *slog.Logger, m *metrics.Metrics) *Firewall {
	f := &Firewall{
		ledger:   ledger,
		recorder: recorder,
		resolver: resolver,
		metrics:  m,
		logger:   logger.With("component", "firewall"),
	}
	f.cfg.Store(cfg)
	f.stages = []stage{f.checkBan, f.checkRate, f.checkCrawler, f.checkPayload}
	return f
}

// SetConfig swaps the thresholds on this firewall and its ledger. Used by
// config hot-reload.
func (f *Firewall) SetConfig(cfg *config.Firewall) {
	f.cfg.Store(cfg)
	f.ledger.SetConfig(cfg)
}

// Middleware wraps next with the inspection pipeline.
func (f *Firewall) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := ClientIP(r)

		for _, check := range f.stages {
			rej := check(ctx, r, ip)
			if rej == nil {
				continue
			}
			if rej.kind != "" {
				f.recordViolation(ctx, r, ip, rej.kind)
			}
			if f.metrics != nil {
				f.metrics.RequestsInspected.WithLabelValues("reject").Inc()
			}
			writeReject(w, rej.reason)
			return
		}

		if f.metrics != nil {
			f.metrics.RequestsInspected.WithLabelValues("allow").Inc()
		}
		next.ServeHTTP(w, r)
	})
}

func (f *Firewall) checkBan(ctx context.Context, r *http.Request, ip string) *rejection {
	if !f.ledger.IsBanned(ctx, ip) {
		return nil
	}
	f.logger.Warn("banned client rejected", "ip", ip, "path", r.URL.Path)
	return &rejection{reason: ReasonBanned}
}

func (f *Firewall) checkRate(ctx context.Context, r *http.Request, ip string) *rejection {
	if !f.ledger.IsRateExceeded(ctx, ip) {
		return nil
	}
	f.logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
	return &rejection{kind: KindRateLimit, reason: ReasonRate}
}

func (f *Firewall) checkCrawler(ctx context.Context, r *http.Request, ip string) *rejection {
	ua := r.UserAgent()
	if ua == "" || !IsCrawlerUserAgent(ua) {
		return nil
	}
	f.logger.Warn("crawler user agent rejected", "ip", ip, "ua", ua)
	return &rejection{kind: KindCrawler, reason: ReasonCrawler}
}

// checkPayload runs the signature detector over the URL path plus query
// string, then over the Referer header.
func (f *Firewall) checkPayload(ctx context.Context, r *http.Request, ip string) *rejection {
	target := r.URL.Path
	if r.URL.RawQuery != "" {
		target = target + "?" + r.URL.RawQuery
	}

	attack := DetectAttack(target)
	if attack == AttackNone {
		attack = DetectAttack(r.Header.Get("Referer"))
	}
	if attack == AttackNone {
		return nil
	}

	f.logger.Warn("attack signature detected", "kind", attack.String(), "ip", ip, "path", r.URL.Path)
	return &rejection{kind: attack.String(), reason: ReasonPayload}
}

// recordViolation resolves the acting user, writes the audit record, bumps
// the violation counter and escalates to a ban at the threshold. Every step
// is best-effort: failures are logged and the rejection proceeds unchanged.
func (f *Firewall) recordViolation(ctx context.Context, r *http.Request, ip, kind string) {
	user := f.resolveUser(ctx, r)

	if f.recorder != nil {
		v := audit.Violation{
			ID:         uuid.NewString(),
			User:       user,
			Kind:       kind,
			Path:       r.URL.Path,
			IP:         ip,
			UserAgent:  r.UserAgent(),
			HappenedAt: time.Now(),
		}
		if err := f.recorder.Record(ctx, v); err != nil {
			f.logger.Error("audit record write failed", "kind", kind, "ip", ip, "error", err)
		}
	}
	if f.metrics != nil {
		f.metrics.ViolationsTotal.WithLabelValues(kind).Inc()
	}

	count := f.ledger.IncrementViolation(ctx, ip)
	if count >= int64(f.cfg.Load().BanThreshold) {
		f.ledger.BanIP(ctx, ip)
	}
}

// resolveUser best-effort-resolves the acting user from an auth token.
// Absence of a token or any lookup failure yields the unknown user.
func (f *Firewall) resolveUser(ctx context.Context, r *http.Request) string {
	if f.resolver == nil {
		return audit.UnknownUser
	}
	token := ExtractToken(r)
	if token == "" {
		return audit.UnknownUser
	}
	user, err := f.resolver.Resolve(ctx, token)
	if err != nil || user == "" {
		return audit.UnknownUser
	}
	return user
}

// ClientIP extracts the originating client address: the first entry of
// X-Forwarded-For, then X-Real-IP, then the transport peer, else "unknown".
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return "unknown"
}

// ExtractToken pulls an auth token from the Authorization header (Bearer
// scheme) or the token query parameter.
func ExtractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) >= 7 && strings.EqualFold(auth[:7], "bearer ") {
		if token := strings.TrimSpace(auth[7:]); token != "" {
			return token
		}
	}
	return r.URL.Query().Get("token")
}

func writeReject(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(map[string]string{"detail": reason})
}
