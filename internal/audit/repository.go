package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// NOTE: PostgresRepo assumes the following table exists, ideally with UPDATE/DELETE revoked:
//
//	CREATE TABLE dashboard_audit_events (
//	    id            TEXT PRIMARY KEY,
//	    type          TEXT NOT NULL,
//	    actor_user_id TEXT NOT NULL DEFAULT '',
//	    actor_role    TEXT NOT NULL DEFAULT '',
//	    username      TEXT NOT NULL DEFAULT '',
//	    session_id    TEXT NOT NULL DEFAULT '',
//	    ip_address    TEXT NOT NULL DEFAULT '',
//	    message       TEXT NOT NULL DEFAULT '',
//	    created_at    TIMESTAMPTZ NOT NULL
//	);

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO dashboard_audit_events
    (id, type, actor_user_id, actor_role, username, session_id, ip_address, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	if _, err := r.db.ExecContext(ctx, q,
		e.ID,
		string(e.Type),
		e.ActorUserID,
		e.ActorRole,
		e.Username,
		e.SessionID,
		e.IPAddress,
		e.Message,
		e.CreatedAt,
	); err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}
