package storage

import (
	"context"
	"time"
)

// Store is the minimal key-value contract the firewall ledger needs.
// Implementations must make Incr atomic per key: two concurrent callers
// each observe a distinct post-increment value.
type Store interface {
	// Incr atomically increments the integer value at key and returns the
	// new value. A missing key counts as zero.
	Incr(ctx context.Context, key string) (int64, error)

	// Expire sets the time-to-live on an existing key. Expiring a missing
	// key is a no-op.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// SetEx stores value at key with the given time-to-live, replacing any
	// previous value and TTL.
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error

	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// Del removes keys.
	Del(ctx context.Context, keys ...string) error

	// Ping probes liveness of the backing store.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
