package models

import "time"

// Durable session keys, stored per browser session.
const (
	SessionKeySelectedKelas = "selectedKelas"
	SessionKeyAccessToken   = "accessToken"
	SessionKeyRefreshToken  = "refreshToken"
	SessionKeyAuthState     = "authState"
)

// SessionEntry is one key/value pair of a browser session, persisted in
// Postgres.
type SessionEntry struct {
	SessionID string    `db:"session_id" json:"session_id"`
	Key       string    `db:"key" json:"key"`
	Value     []byte    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
