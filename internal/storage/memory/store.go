package memory

import (
	"context"
	"sync"
	"time"
)

// entry holds a counter or value with an optional expiry
type entry struct {
	count     int64
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Store implements storage.Store in process memory. It exists for
// development and tests; production deployments use the Redis backend so
// counters are shared across processes.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry

	done      chan struct{}
	closeOnce sync.Once
}

// NewStore creates a memory store and starts its expiry sweeper.
func NewStore() *Store {
	s := &Store{
		entries: make(map[string]*entry),
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// sweep periodically evicts expired entries so idle keys do not accumulate.
// Reads also drop expired entries lazily, so the sweep interval is not a
// correctness concern.
func (s *Store) sweep() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for key, e := range s.entries {
				if e.expired(now) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

// live returns the unexpired entry for key, dropping it if expired.
// Caller must hold s.mu.
func (s *Store) live(key string) *entry {
	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	if e.expired(time.Now()) {
		delete(s.entries, key)
		return nil
	}
	return e
}

// Incr atomically increments the counter at key.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.live(key)
	if e == nil {
		e = &entry{}
		s.entries[key] = e
	}
	e.count++
	return e.count, nil
}

// Expire sets the time-to-live on an existing key.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.live(key); e != nil {
		e.expiresAt = time.Now().Add(ttl)
	}
	return nil
}

// SetEx stores value at key with the given time-to-live.
func (s *Store) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &entry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Exists reports whether key is present and unexpired.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.live(key) != nil, nil
}

// Del removes keys.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.entries, key)
	}
	return nil
}

// Ping always succeeds; the store is in process.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close stops the expiry sweeper. Idempotent.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	return nil
}
