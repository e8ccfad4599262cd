// Package service implements the reference backend's business rules,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/civica/internal/models"
	"github.com/atinyakov/civica/internal/repository"
)

var (
	// ErrInvalidInput is returned when a required field is empty or unknown.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmailTaken is returned when registering an email twice.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized is returned for an unknown or revoked token.
	ErrUnauthorized = errors.New("unauthorized")
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	CreateUser(ctx context.Context, u *models.Identity, passwordHash string) error
	UserByEmail(ctx context.Context, email string) (*models.Identity, string, error)
	UserByID(ctx context.Context, id string) (*models.Identity, error)
	UpdateUser(ctx context.Context, u *models.Identity) error
	CreateSession(ctx context.Context, token, userID string) error
	SessionUser(ctx context.Context, token string) (string, error)
}

// Service registers and signs in users and resolves their bearer tokens.
type Service struct {
	// repo performs the data-layer operations.
	repo AuthRepository
	// cost is the bcrypt work factor.
	cost int
}

// NewAuthService constructs a new Service using the provided repository.
func NewAuthService(repo AuthRepository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// Register creates a learner account and opens a session for it.
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.Identity{
		ID:            uuid.NewString(),
		Name:          name,
		Email:         email,
		Role:          models.RoleUser,
		LearningLevel: models.Beginner,
	}
	if err := s.repo.CreateUser(ctx, u, string(hash)); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.openSession(ctx, u)
}

// Login checks the password and opens a new session.
func (s *Service) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	u, hash, err := s.repo.UserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, u)
}

// Authenticate resolves a bearer token to its user id.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	id, err := s.repo.SessionUser(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrUnauthorized
	}
	return id, err
}

// Profile returns the user with the given id. A user deleted since the token
// was issued counts as unauthorized.
func (s *Service) Profile(ctx context.Context, userID string) (*models.Identity, error) {
	u, err := s.repo.UserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	return u, err
}

// UpdateProfile applies the fields present in update and returns the result.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.Identity, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		u.Name = name
	}
	if update.LearningLevel != nil {
		if !update.LearningLevel.Valid() {
			return nil, ErrInvalidInput
		}
		u.LearningLevel = *update.LearningLevel
	}
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) openSession(ctx context.Context, u *models.Identity) (*models.AuthResponse, error) {
	token := uuid.NewString()
	if err := s.repo.CreateSession(ctx, token, u.ID); err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: u}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
