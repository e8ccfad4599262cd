package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/atinyakov/civica/internal/models"
)

func setupAuthMock(t *testing.T) (*PostgresAuthRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresAuthRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

var alice = &models.Identity{
	ID:            "u1",
	Name:          "Alice",
	Email:         "alice@example.com",
	Role:          models.RoleUser,
	LearningLevel: models.Beginner,
}

const insertUser = `INSERT INTO users (id, name, email, password_hash, role, learning_level) VALUES ($1, $2, $3, $4, $5, $6)`

func TestCreateUser_Success(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(insertUser)).
		WithArgs(alice.ID, alice.Name, alice.Email, "hash", alice.Role, alice.LearningLevel).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.CreateUser(context.Background(), alice, "hash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(insertUser)).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := repo.CreateUser(context.Background(), alice, "hash")
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("CreateUser error = %v; want ErrDuplicate", err)
	}
}

func TestUserByEmail(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	query := regexp.QuoteMeta(`SELECT id, name, email, role, learning_level, password_hash FROM users WHERE email = $1`)
	mock.ExpectQuery(query).
		WithArgs(alice.Email).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role", "learning_level", "password_hash"}).
			AddRow("u1", "Alice", alice.Email, "user", "beginner", "hash"))
	mock.ExpectQuery(query).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	u, hash, err := repo.UserByEmail(context.Background(), alice.Email)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *u != *alice || hash != "hash" {
		t.Errorf("UserByEmail = %+v, %q", u, hash)
	}

	if _, _, err := repo.UserByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UserByEmail error = %v; want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserByID_Error(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, role, learning_level FROM users WHERE id = $1`)).
		WithArgs("u1").
		WillReturnError(errors.New("query failed"))

	_, err := repo.UserByID(context.Background(), "u1")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("UserByID error = %v; want wrapped query error", err)
	}
}

func TestUpdateUser(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	query := regexp.QuoteMeta(`UPDATE users SET name = $2, learning_level = $3 WHERE id = $1`)
	mock.ExpectExec(query).
		WithArgs("u1", "Alice", models.Teacher).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).
		WithArgs("ghost", "", models.LearningLevel("")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateUser(context.Background(), &models.Identity{ID: "u1", Name: "Alice", LearningLevel: models.Teacher}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.UpdateUser(context.Background(), &models.Identity{ID: "ghost"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateUser error = %v; want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSessions(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions (token, user_id) VALUES ($1, $2)`)).
		WithArgs("tok", "u1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	query := regexp.QuoteMeta(`SELECT user_id FROM sessions WHERE token = $1`)
	mock.ExpectQuery(query).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))
	mock.ExpectQuery(query).
		WithArgs("stale").
		WillReturnError(sql.ErrNoRows)

	if err := repo.CreateSession(context.Background(), "tok", "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id, err := repo.SessionUser(context.Background(), "tok")
	if err != nil || id != "u1" {
		t.Errorf("SessionUser = %q, %v; want u1", id, err)
	}
	if _, err := repo.SessionUser(context.Background(), "stale"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SessionUser error = %v; want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
