package redis

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"firewall/internal/config"
	"firewall/internal/storage"
	"firewall/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// stopJoinTimeout bounds how long Stop waits for the monitor to exit.
const stopJoinTimeout = 5 * time.Second

// DialFunc opens and liveness-probes a new store connection.
type DialFunc func(ctx context.Context) (storage.Store, error)

// Manager owns the single shared store connection. It establishes the
// connection on Start, monitors it in the background, and reconnects with
// exponential backoff when it dies. Connectivity failures are never
// propagated to callers: GetClient returns nil and the firewall checks
// fail open.
type Manager struct {
	logger *slog.Logger
	dial   DialFunc

	heartbeat    time.Duration
	retryInitial time.Duration
	retryMax     time.Duration
	probeTimeout time.Duration

	// OnStateChange, if set, is invoked with true after a successful
	// connect and false when the connection is found dead or closed.
	OnStateChange func(connected bool)

	mu     sync.Mutex
	client storage.Store

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewManager creates a manager that dials the configured Redis URL.
func NewManager(cfg *config.Redis, logger *slog.Logger) *Manager {
	m := newManager(cfg, logger)
	url := cfg.URL
	timeout := m.probeTimeout
	m.dial = func(ctx context.Context) (storage.Store, error) {
		return dialRedis(ctx, url, timeout)
	}
	return m
}

// NewManagerWithDial creates a manager with a custom dial function. Used by
// tests and alternative backends.
func NewManagerWithDial(cfg *config.Redis, logger *slog.Logger, dial DialFunc) *Manager {
	m := newManager(cfg, logger)
	m.dial = dial
	return m
}

func newManager(cfg *config.Redis, logger *slog.Logger) *Manager {
	return &Manager{
		logger:       logger.With("component", "store-manager"),
		heartbeat:    cfg.HeartbeatIntervalDuration(),
		retryInitial: cfg.RetryInitialDuration(),
		retryMax:     cfg.RetryMaxDuration(),
		probeTimeout: cfg.ConnectTimeoutDuration(),
		stopCh:       make(chan struct{}),
	}
}

func dialRedis(ctx context.Context, url string, timeout time.Duration) (storage.Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.NewError(errors.ErrorTypeInternal, "invalid redis url").WithCause(err)
	}
	opts.DialTimeout = timeout

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errors.NewError(errors.ErrorTypeUnavailable, "redis liveness probe failed").WithCause(err)
	}

	return NewStore(client), nil
}

// Start establishes the initial connection and launches the background
// monitor. A failed initial connect is not an error: the monitor keeps
// retrying and callers see GetClient() == nil until it succeeds.
func (m *Manager) Start() {
	if !m.connect() {
		m.logger.Warn("store unavailable at startup, monitor will keep retrying")
	}
	m.wg.Add(1)
	go m.monitor()
}

// Stop signals the monitor to terminate, waits for it with a bounded join,
// and closes the connection. Idempotent.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(stopJoinTimeout):
		m.logger.Warn("store monitor did not exit in time")
	}

	m.mu.Lock()
	m.closeLocked()
	m.mu.Unlock()
	m.logger.Info("store connection closed")
}

// GetClient returns the current connection or nil when disconnected. It
// never blocks on the network and never attempts to connect.
func (m *Manager) GetClient() storage.Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client
}

// connect dials a new connection and swaps it in on success. On failure
// the current state is left untouched.
func (m *Manager) connect() bool {
	client, err := m.dial(context.Background())
	if err != nil {
		m.logger.Error("store connect failed", "error", err)
		return false
	}

	m.mu.Lock()
	m.closeLocked()
	m.client = client
	m.mu.Unlock()

	m.logger.Info("store connected")
	if m.OnStateChange != nil {
		m.OnStateChange(true)
	}
	return true
}

// closeLocked closes the current connection. Caller must hold m.mu.
func (m *Manager) closeLocked() {
	if m.client == nil {
		return
	}
	if err := m.client.Close(); err != nil {
		m.logger.Debug("closing stale store connection", "error", err)
	}
	m.client = nil
	if m.OnStateChange != nil {
		m.OnStateChange(false)
	}
}

// isAlive probes the current connection. The handle is read under the lock;
// the probe itself runs outside it so readers are not blocked on the
// network.
func (m *Manager) isAlive() bool {
	m.mu.Lock()
	client := m.client
	m.mu.Unlock()

	if client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.probeTimeout)
	defer cancel()
	return client.Ping(ctx) == nil
}

// monitor checks liveness on every heartbeat and runs the reconnect loop
// when the connection is dead. All waits select on stopCh so Stop completes
// promptly instead of sitting out a full backoff interval.
func (m *Manager) monitor() {
	defer m.wg.Done()

	retry := m.retryInitial
	for {
		select {
		case <-m.stopCh:
			return
		case <-time.After(m.heartbeat):
		}

		if m.isAlive() {
			continue
		}

		m.logger.Warn("store connection lost, reconnecting")
		if m.OnStateChange != nil {
			m.OnStateChange(false)
		}

		for {
			select {
			case <-m.stopCh:
				return
			default:
			}

			if m.connect() {
				retry = m.retryInitial
				break
			}

			m.logger.Warn("store reconnect failed", "retryIn", retry)
			select {
			case <-m.stopCh:
				return
			case <-time.After(retry):
			}

			retry *= 2
			if retry > m.retryMax {
				retry = m.retryMax
			}
		}
	}
}
