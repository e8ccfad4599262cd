// Package repository provides persistence for the reference backend's
// accounts, sessions and community content.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/atinyakov/civica/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("already exists")
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresAuthRepository stores users and their session tokens in PostgreSQL.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a PostgresAuthRepository on db.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// CreateUser inserts u with its password hash. A taken email yields ErrDuplicate.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, u *models.Identity, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, learning_level) VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Name, u.Email, passwordHash, u.Role, u.LearningLevel,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// UserByEmail returns the user registered with email and its password hash.
func (r *PostgresAuthRepository) UserByEmail(ctx context.Context, email string) (*models.Identity, string, error) {
	var (
		u    models.Identity
		hash string
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, email, role, learning_level, password_hash FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.LearningLevel, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("UserByEmail: %w", err)
	}
	return &u, hash, nil
}

// UserByID returns the user with the given id.
func (r *PostgresAuthRepository) UserByID(ctx context.Context, id string) (*models.Identity, error) {
	var u models.Identity
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, email, role, learning_level FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.LearningLevel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("UserByID: %w", err)
	}
	return &u, nil
}

// UpdateUser writes the editable profile fields of u.
func (r *PostgresAuthRepository) UpdateUser(ctx context.Context, u *models.Identity) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET name = $2, learning_level = $3 WHERE id = $1`,
		u.ID, u.Name, u.LearningLevel,
	)
	if err != nil {
		return fmt.Errorf("UpdateUser: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateSession binds token to userID.
func (r *PostgresAuthRepository) CreateSession(ctx context.Context, token, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id) VALUES ($1, $2)`,
		token, userID,
	)
	if err != nil {
		return fmt.Errorf("CreateSession: %w", err)
	}
	return nil
}

// SessionUser returns the id of the user owning token.
func (r *PostgresAuthRepository) SessionUser(ctx context.Context, token string) (string, error) {
	var userID string
	err := r.DB.QueryRowContext(ctx,
		`SELECT user_id FROM sessions WHERE token = $1`,
		token,
	).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("SessionUser: %w", err)
	}
	return userID, nil
}
