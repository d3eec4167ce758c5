package auth

import (
	"context"
	"database/sql"
	"time"

	"firewall/pkg/errors"
	_ "github.com/mattn/go-sqlite3"
)

const tokenSchema = `
CREATE TABLE IF NOT EXISTS tokens (
	uuid           TEXT PRIMARY KEY,
	belong_to      TEXT NOT NULL,
	expired_at     TIMESTAMP,
	current_status TEXT NOT NULL DEFAULT 'active'
)`

// SQLResolver resolves opaque tokens against a credential table. A token
// resolves only while it exists, is unexpired and has not been revoked.
type SQLResolver struct {
	db *sql.DB
}

// NewSQLResolver opens the credential database at path.
func NewSQLResolver(path string) (*SQLResolver, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.NewError(errors.ErrorTypeInternal, "failed to open credential database").WithCause(err)
	}
	if _, err := db.Exec(tokenSchema); err != nil {
		db.Close()
		return nil, errors.NewError(errors.ErrorTypeInternal, "failed to create credential schema").WithCause(err)
	}
	return &SQLResolver{db: db}, nil
}

// Resolve implements Resolver.
func (r *SQLResolver) Resolve(ctx context.Context, token string) (string, error) {
	var owner string
	err := r.db.QueryRowContext(ctx,
		`SELECT belong_to FROM tokens
		 WHERE uuid = ?
		   AND (expired_at IS NULL OR expired_at > ?)
		   AND current_status != 'revoked'`,
		token, time.Now(),
	).Scan(&owner)
	if err == sql.ErrNoRows {
		return "", ErrUnknownToken
	}
	if err != nil {
		return "", errors.NewError(errors.ErrorTypeInternal, "credential lookup failed").WithCause(err)
	}
	return owner, nil
}

// Close closes the database.
func (r *SQLResolver) Close() error {
	return r.db.Close()
}
