package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
)

// SessionRepository persists browser-session key/value state in Postgres.
// It implements session.Storage.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get returns the stored value for the session and key, or ErrNotFound.
func (r *SessionRepository) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	const query = `SELECT value FROM session_entries WHERE session_id = $1 AND key = $2`
	var value []byte
	if err := r.db.GetContext(ctx, &value, query, sessionID, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session key not found")
		}
		return nil, fmt.Errorf("get session entry: %w", err)
	}
	return value, nil
}

// Set upserts the value for the session and key.
func (r *SessionRepository) Set(ctx context.Context, sessionID, key string, value []byte) error {
	const query = `INSERT INTO session_entries (session_id, key, value, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (session_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, sessionID, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("set session entry: %w", err)
	}
	return nil
}

// Delete removes the key for the session. Missing rows are not an error.
func (r *SessionRepository) Delete(ctx context.Context, sessionID, key string) error {
	const query = `DELETE FROM session_entries WHERE session_id = $1 AND key = $2`
	if _, err := r.db.ExecContext(ctx, query, sessionID, key); err != nil {
		return fmt.Errorf("delete session entry: %w", err)
	}
	return nil
}

// PurgeIdle removes every entry untouched since the cutoff. Invoked by the
// background sweeper so abandoned sessions do not accumulate.
func (r *SessionRepository) PurgeIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM session_entries WHERE updated_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge idle sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}
