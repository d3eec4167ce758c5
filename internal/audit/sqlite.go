package audit

import (
	"context"
	"database/sql"

	"firewall/pkg/errors"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS illegal_requests (
	uuid        TEXT PRIMARY KEY,
	user        TEXT NOT NULL,
	happened_at TIMESTAMP NOT NULL,
	type        TEXT NOT NULL,
	path        TEXT NOT NULL,
	ip          TEXT NOT NULL,
	ua          TEXT NOT NULL
)`

// SQLiteRecorder stores violations in a local SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder opens (creating if needed) the audit database at path.
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.NewError(errors.ErrorTypeInternal, "failed to open audit database").WithCause(err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.NewError(errors.ErrorTypeInternal, "failed to create audit schema").WithCause(err)
	}
	return &SQLiteRecorder{db: db}, nil
}

// Record appends one violation.
func (r *SQLiteRecorder) Record(ctx context.Context, v Violation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO illegal_requests (uuid, user, happened_at, type, path, ip, ua)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.User, v.HappenedAt, v.Kind, v.Path, v.IP, v.UserAgent,
	)
	if err != nil {
		return errors.NewError(errors.ErrorTypeInternal, "failed to write audit record").WithCause(err)
	}
	return nil
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
