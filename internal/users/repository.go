package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// NOTE: PostgresRepo assumes the following table exists:
//
//	CREATE TABLE dashboard_users (
//	    id            TEXT PRIMARY KEY,
//	    username      TEXT NOT NULL UNIQUE,
//	    password_hash TEXT NOT NULL,
//	    role          TEXT NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);

// Repository is the persistence contract for dashboard users.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (User, error)
	List(ctx context.Context) ([]User, error)
}

// PostgresRepo reads users through database/sql; open the pool with the pgx stdlib driver.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) FindByUsername(ctx context.Context, username string) (User, error) {
	const q = `
SELECT id, username, password_hash, role, created_at
FROM dashboard_users
WHERE username = $1
`
	var u User
	if err := r.db.QueryRowContext(ctx, q, username).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("users: find by username: %w", err)
	}
	return u, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]User, error) {
	const q = `
SELECT id, username, password_hash, role, created_at
FROM dashboard_users
ORDER BY username
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("users: list scan: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	return out, nil
}
