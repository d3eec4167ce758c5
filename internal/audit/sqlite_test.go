package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	recorder, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("failed to open recorder: %v", err)
	}
	t.Cleanup(func() { recorder.Close() })
	return recorder
}

func TestSQLiteRecorderRecord(t *testing.T) {
	recorder := newTestRecorder(t)
	ctx := context.Background()

	v := Violation{
		ID:         uuid.NewString(),
		User:       UnknownUser,
		Kind:       "xss",
		Path:       "/search",
		IP:         "1.2.3.4",
		UserAgent:  "curl/8.4.0",
		HappenedAt: time.Now(),
	}
	if err := recorder.Record(ctx, v); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	var user, kind, path, ip, ua string
	err := recorder.db.QueryRowContext(ctx,
		`SELECT user, type, path, ip, ua FROM illegal_requests WHERE uuid = ?`, v.ID,
	).Scan(&user, &kind, &path, &ip, &ua)
	if err != nil {
		t.Fatalf("failed to read record back: %v", err)
	}
	if user != v.User || kind != v.Kind || path != v.Path || ip != v.IP || ua != v.UserAgent {
		t.Errorf("stored record mismatch: got %s %s %s %s %s", user, kind, path, ip, ua)
	}
}

func TestSQLiteRecorderDuplicateID(t *testing.T) {
	recorder := newTestRecorder(t)
	ctx := context.Background()

	v := Violation{ID: "fixed-id", User: "u", Kind: "crawler", Path: "/", IP: "1.1.1.1", UserAgent: "x", HappenedAt: time.Now()}
	if err := recorder.Record(ctx, v); err != nil {
		t.Fatalf("first Record failed: %v", err)
	}
	if err := recorder.Record(ctx, v); err == nil {
		t.Fatal("expected duplicate primary key to fail")
	}
}

func TestSQLiteRecorderReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.db")

	recorder, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("failed to open recorder: %v", err)
	}
	v := Violation{ID: uuid.NewString(), User: "u", Kind: "rate_limit", Path: "/", IP: "1.1.1.1", UserAgent: "x", HappenedAt: time.Now()}
	if err := recorder.Record(context.Background(), v); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	recorder.Close()

	// Reopening must not clobber existing records
	reopened, err := NewSQLiteRecorder(path)
	if err != nil {
		t.Fatalf("failed to reopen recorder: %v", err)
	}
	defer reopened.Close()

	var count int
	if err := reopened.db.QueryRow(`SELECT COUNT(*) FROM illegal_requests`).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestNopRecorder(t *testing.T) {
	if err := (NopRecorder{}).Record(context.Background(), Violation{}); err != nil {
		t.Fatalf("NopRecorder.Record = %v, want nil", err)
	}
}
