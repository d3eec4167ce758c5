package audit

import (
	"context"
	"time"
)

// UnknownUser marks a violation whose actor could not be resolved.
const UnknownUser = "unknown"

// Violation is one detected firewall breach. Records are written once and
// never updated.
type Violation struct {
	ID         string
	User       string
	Kind       string
	Path       string
	IP         string
	UserAgent  string
	HappenedAt time.Time
}

// Recorder persists violations. Writes are fire-and-forget from the
// pipeline's point of view: a failed write is logged by the caller and
// never changes a decision already made.
type Recorder interface {
	Record(ctx context.Context, v Violation) error
}

// NopRecorder discards every record. Used when no audit store is
// configured.
type NopRecorder struct{}

// Record implements Recorder
func (NopRecorder) Record(context.Context, Violation) error {
	return nil
}
