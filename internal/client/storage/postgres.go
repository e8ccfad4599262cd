package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_entries (
    namespace TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (namespace, key)
);
`

// queryTimeout bounds every statement issued by PostgresBackend.
const queryTimeout = 5 * time.Second

// InitPostgres opens dsn, checks connectivity and creates the session table.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return prepare(db)
}

// prepare pings db and creates the schema. db is closed when either step fails.
func prepare(db *sql.DB) (*sql.DB, error) {
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

// PostgresBackend stores entries in the session_entries table, scoped by a
// namespace so several client profiles can share one database.
type PostgresBackend struct {
	DB        *sql.DB
	Namespace string
}

// NewPostgresBackend returns a PostgresBackend for namespace.
func NewPostgresBackend(db *sql.DB, namespace string) *PostgresBackend {
	return &PostgresBackend{DB: db, Namespace: namespace}
}

// Get implements Backend.
func (p *PostgresBackend) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var value string
	err := p.DB.QueryRowContext(ctx,
		`SELECT value FROM session_entries WHERE namespace = $1 AND key = $2`,
		p.Namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select session entry: %w", err)
	}
	return value, nil
}

// Set implements Backend.
func (p *PostgresBackend) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := p.DB.ExecContext(ctx, `
        INSERT INTO session_entries (namespace, key, value, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (namespace, key) DO UPDATE
           SET value = EXCLUDED.value, updated_at = now()
    `, p.Namespace, key, value)
	if err != nil {
		return fmt.Errorf("upsert session entry: %w", err)
	}
	return nil
}

// Remove implements Backend.
func (p *PostgresBackend) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	_, err := p.DB.ExecContext(ctx,
		`DELETE FROM session_entries WHERE namespace = $1 AND key = $2`,
		p.Namespace, key,
	)
	if err != nil {
		return fmt.Errorf("delete session entry: %w", err)
	}
	return nil
}
