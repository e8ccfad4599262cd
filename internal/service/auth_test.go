package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/civica/internal/models"
	"github.com/atinyakov/civica/internal/repository"
)

type mockAuthRepo struct {
	CreateUserFunc    func(ctx context.Context, u *models.Identity, hash string) error
	UserByEmailFunc   func(ctx context.Context, email string) (*models.Identity, string, error)
	UserByIDFunc      func(ctx context.Context, id string) (*models.Identity, error)
	UpdateUserFunc    func(ctx context.Context, u *models.Identity) error
	CreateSessionFunc func(ctx context.Context, token, userID string) error
	SessionUserFunc   func(ctx context.Context, token string) (string, error)
}

func (m *mockAuthRepo) CreateUser(ctx context.Context, u *models.Identity, hash string) error {
	return m.CreateUserFunc(ctx, u, hash)
}
func (m *mockAuthRepo) UserByEmail(ctx context.Context, email string) (*models.Identity, string, error) {
	return m.UserByEmailFunc(ctx, email)
}
func (m *mockAuthRepo) UserByID(ctx context.Context, id string) (*models.Identity, error) {
	return m.UserByIDFunc(ctx, id)
}
func (m *mockAuthRepo) UpdateUser(ctx context.Context, u *models.Identity) error {
	return m.UpdateUserFunc(ctx, u)
}
func (m *mockAuthRepo) CreateSession(ctx context.Context, token, userID string) error {
	return m.CreateSessionFunc(ctx, token, userID)
}
func (m *mockAuthRepo) SessionUser(ctx context.Context, token string) (string, error) {
	return m.SessionUserFunc(ctx, token)
}

func newTestService(repo AuthRepository) *Service {
	svc := NewAuthService(repo)
	svc.cost = bcrypt.MinCost
	return svc
}

func TestRegister_Success(t *testing.T) {
	var stored *models.Identity
	var session [2]string
	repo := &mockAuthRepo{
		CreateUserFunc: func(_ context.Context, u *models.Identity, hash string) error {
			if bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")) != nil {
				t.Error("CreateUser received a hash that does not match the password")
			}
			stored = u
			return nil
		},
		CreateSessionFunc: func(_ context.Context, token, userID string) error {
			session = [2]string{token, userID}
			return nil
		},
	}
	svc := newTestService(repo)

	resp, err := svc.Register(context.Background(), " Carol ", " Carol@Example.com", "secret")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if stored.Name != "Carol" || stored.Email != "carol@example.com" {
		t.Errorf("stored user = %+v", stored)
	}
	if stored.Role != models.RoleUser || stored.LearningLevel != models.Beginner {
		t.Errorf("new users must be beginner learners, got %+v", stored)
	}
	if resp.Token == "" || session[0] != resp.Token || session[1] != stored.ID {
		t.Errorf("session %v does not match response token %q", session, resp.Token)
	}
}

func TestRegister_Errors(t *testing.T) {
	dbErr := errors.New("insert failed")
	tests := []struct {
		name    string
		email   string
		repoErr error
		wantErr error
	}{
		{"empty email", " ", nil, ErrInvalidInput},
		{"duplicate", "dave@example.com", repository.ErrDuplicate, ErrEmailTaken},
		{"db error", "dave@example.com", dbErr, dbErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAuthRepo{
				CreateUserFunc: func(context.Context, *models.Identity, string) error { return tt.repoErr },
			}
			_, err := newTestService(repo).Register(context.Background(), "Dave", tt.email, "pw")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register error = %v; want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	user := &models.Identity{ID: "u1", Email: "erin@example.com"}
	repo := &mockAuthRepo{
		UserByEmailFunc: func(_ context.Context, email string) (*models.Identity, string, error) {
			if email != user.Email {
				return nil, "", repository.ErrNotFound
			}
			return user, string(hash), nil
		},
		CreateSessionFunc: func(context.Context, string, string) error { return nil },
	}
	svc := newTestService(repo)

	resp, err := svc.Login(context.Background(), "ERIN@example.com", "right")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if resp.User.ID != "u1" || resp.Token == "" {
		t.Errorf("Login = %+v", resp)
	}

	if _, err := svc.Login(context.Background(), "erin@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v; want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@example.com", "right"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v; want ErrInvalidCredentials", err)
	}
}

func TestAuthenticate(t *testing.T) {
	repo := &mockAuthRepo{
		SessionUserFunc: func(_ context.Context, token string) (string, error) {
			if token == "good" {
				return "u1", nil
			}
			return "", repository.ErrNotFound
		},
	}
	svc := newTestService(repo)

	if id, err := svc.Authenticate(context.Background(), "good"); err != nil || id != "u1" {
		t.Errorf("Authenticate(good) = %q, %v", id, err)
	}
	for _, token := range []string{"", "stale"} {
		if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Authenticate(%q) error = %v; want ErrUnauthorized", token, err)
		}
	}
}

func TestUpdateProfile(t *testing.T) {
	var saved *models.Identity
	repo := &mockAuthRepo{
		UserByIDFunc: func(_ context.Context, id string) (*models.Identity, error) {
			if id != "u1" {
				return nil, repository.ErrNotFound
			}
			return &models.Identity{ID: "u1", Name: "Frank", LearningLevel: models.Beginner}, nil
		},
		UpdateUserFunc: func(_ context.Context, u *models.Identity) error {
			saved = u
			return nil
		},
	}
	svc := newTestService(repo)

	level := models.Teacher
	got, err := svc.UpdateProfile(context.Background(), "u1", models.ProfileUpdate{LearningLevel: &level})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if got.Name != "Frank" || got.LearningLevel != models.Teacher || saved != got {
		t.Errorf("UpdateProfile = %+v", got)
	}

	bad := models.LearningLevel("expert")
	if _, err := svc.UpdateProfile(context.Background(), "u1", models.ProfileUpdate{LearningLevel: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown level error = %v; want ErrInvalidInput", err)
	}
	if _, err := svc.UpdateProfile(context.Background(), "gone", models.ProfileUpdate{}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("deleted user error = %v; want ErrUnauthorized", err)
	}
}
