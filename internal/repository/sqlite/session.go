package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/forgeworld/forge/internal/model"
	"github.com/forgeworld/forge/internal/repository"
)

// compile-time check that *DB implements repository.SessionRepository
var _ repository.SessionRepository = (*DB)(nil)

// CreateSession inserts a new session cookie record as ACTIVE. Callers
// enforce the single-ACTIVE-per-email invariant by calling
// ExpireActiveSessions first; with one writer per process that two-step is
// race-free.
func (db *DB) CreateSession(ctx context.Context, cookie *model.SessionCookie) error {
	cookie.ID = "sess_" + uuid.NewString()
	now := time.Now()
	cookie.Status = model.SessionActive
	cookie.LastActive = now
	cookie.CreatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO session_cookies (id, email, username, user_agent, status,
		 avatar_url, repo_count, last_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cookie.ID,
		cookie.Email,
		cookie.Username,
		cookie.UserAgent,
		string(cookie.Status),
		cookie.AvatarURL,
		cookie.RepoCount,
		cookie.LastActive,
		cookie.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating session cookie: %w", err)
	}

	return nil
}

// ExpireActiveSessions marks every ACTIVE cookie for the email as EXPIRED,
// stamping last_active with the expiry time. Returns the number of cookies
// affected; zero is normal for a first login.
func (db *DB) ExpireActiveSessions(ctx context.Context, email string) (int, error) {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE session_cookies
		 SET status = ?, last_active = ?
		 WHERE email = ? AND status = ?`,
		string(model.SessionExpired),
		time.Now(),
		email,
		string(model.SessionActive),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: expiring session cookies for %s: %w", email, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return int(affected), nil
}

// ListSessions returns all session cookie records, newest first.
func (db *DB) ListSessions(ctx context.Context) ([]model.SessionCookie, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, email, username, user_agent, status, avatar_url, repo_count,
		 last_active, created_at
		 FROM session_cookies
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing session cookies: %w", err)
	}
	defer rows.Close()

	cookies := make([]model.SessionCookie, 0)
	for rows.Next() {
		var c model.SessionCookie
		var status string
		if err := rows.Scan(&c.ID, &c.Email, &c.Username, &c.UserAgent, &status,
			&c.AvatarURL, &c.RepoCount, &c.LastActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning session cookie row: %w", err)
		}
		c.Status = model.SessionStatus(status)
		cookies = append(cookies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating session cookies: %w", err)
	}

	return cookies, nil
}

// CountActiveSessions returns the number of ACTIVE session cookies across
// all emails.
func (db *DB) CountActiveSessions(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM session_cookies WHERE status = ?`,
		string(model.SessionActive),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting active sessions: %w", err)
	}
	return n, nil
}
