package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/forgeworld/forge/internal/model"
	"github.com/forgeworld/forge/internal/repository"
)

// compile-time check that *DB implements repository.AuditLogRepository
var _ repository.AuditLogRepository = (*DB)(nil)

// AppendAuditLog inserts a new audit entry. The log is append-only: there
// is no update or delete path, and no retention limit.
func (db *DB) AppendAuditLog(ctx context.Context, entry *model.AuditLog) error {
	entry.ID = xid.New().String()
	entry.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO audit_logs (id, type, message, email, username, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		string(entry.Type),
		entry.Message,
		entry.Email,
		entry.Username,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: appending audit log: %w", err)
	}

	return nil
}

// ListAuditLogs returns all audit entries, newest first.
func (db *DB) ListAuditLogs(ctx context.Context) ([]model.AuditLog, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, type, message, email, username, created_at
		 FROM audit_logs
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing audit logs: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AuditLog, 0)
	for rows.Next() {
		var e model.AuditLog
		var typ string
		if err := rows.Scan(&e.ID, &typ, &e.Message, &e.Email, &e.Username, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning audit log row: %w", err)
		}
		e.Type = model.LogType(typ)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating audit logs: %w", err)
	}

	return entries, nil
}
