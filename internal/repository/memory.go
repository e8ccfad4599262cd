package repository

import (
	"context"
	"sync"

	"github.com/atinyakov/civica/internal/models"
)

// MemoryAuthRepository keeps users and sessions in process memory. It backs
// the reference backend when no database is configured.
type MemoryAuthRepository struct {
	mu       sync.RWMutex
	users    map[string]models.Identity
	hashes   map[string]string
	byEmail  map[string]string
	sessions map[string]string
}

// NewMemoryAuthRepository returns an empty MemoryAuthRepository.
func NewMemoryAuthRepository() *MemoryAuthRepository {
	return &MemoryAuthRepository{
		users:    make(map[string]models.Identity),
		hashes:   make(map[string]string),
		byEmail:  make(map[string]string),
		sessions: make(map[string]string),
	}
}

func (r *MemoryAuthRepository) CreateUser(_ context.Context, u *models.Identity, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrDuplicate
	}
	r.users[u.ID] = *u
	r.hashes[u.ID] = passwordHash
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *MemoryAuthRepository) UserByEmail(_ context.Context, email string) (*models.Identity, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, "", ErrNotFound
	}
	u := r.users[id]
	return &u, r.hashes[id], nil
}

func (r *MemoryAuthRepository) UserByID(_ context.Context, id string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryAuthRepository) UpdateUser(_ context.Context, u *models.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Name = u.Name
	cur.LearningLevel = u.LearningLevel
	r.users[u.ID] = cur
	return nil
}

func (r *MemoryAuthRepository) CreateSession(_ context.Context, token, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token] = userID
	return nil
}

func (r *MemoryAuthRepository) SessionUser(_ context.Context, token string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.sessions[token]
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

// RevokeSession forgets token. Later requests carrying it are unauthorized.
func (r *MemoryAuthRepository) RevokeSession(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
}
