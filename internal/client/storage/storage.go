// Package storage holds the client session: the in-memory identity and its
// mirror in durable key/value storage.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/civica/internal/models"
)

// Keys under which the session is persisted.
const (
	TokenKey = "token"
	UserKey  = "user"
)

var (
	// ErrNotFound is returned by a Backend when a key is absent.
	ErrNotFound = errors.New("storage: key not found")
	// ErrNoSession is returned by Store.Cached when no complete session is persisted.
	ErrNoSession = errors.New("storage: no persisted session")
)

// Backend is durable string-keyed storage.
type Backend interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) (string, error)
	// Set stores value under key.
	Set(key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}

// Store holds the single in-memory session state and mirrors it to a Backend.
//
// Persistence is best-effort: backend failures are logged and otherwise
// treated as success.
type Store struct {
	backend Backend
	log     *zap.Logger

	mu    sync.RWMutex
	state models.State
}

// NewStore returns a Store in the loading state with no identity.
func NewStore(backend Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		backend: backend,
		log:     log,
		state:   models.State{Loading: true},
	}
}

// Read returns the current session state. The returned identity is a copy.
func (s *Store) Read() models.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.State{Identity: clone(s.state.Identity), Loading: s.state.Loading}
}

// Write sets the in-memory identity and persists both the identity and the token.
func (s *Store) Write(identity *models.Identity, token string) {
	s.mu.Lock()
	s.state.Identity = clone(identity)
	s.mu.Unlock()

	b, err := json.Marshal(identity)
	if err != nil {
		s.log.Warn("failed to encode identity", zap.Error(err))
		return
	}
	if err := s.backend.Set(TokenKey, token); err != nil {
		s.log.Warn("failed to persist token", zap.Error(err))
	}
	if err := s.backend.Set(UserKey, string(b)); err != nil {
		s.log.Warn("failed to persist identity", zap.Error(err))
	}
}

// Clear drops the in-memory identity and removes both persisted entries.
func (s *Store) Clear() {
	s.mu.Lock()
	s.state.Identity = nil
	s.mu.Unlock()

	for _, key := range []string{TokenKey, UserKey} {
		if err := s.backend.Remove(key); err != nil {
			s.log.Warn("failed to remove session entry", zap.String("key", key), zap.Error(err))
		}
	}
}

// Token returns the persisted bearer token, or "" when there is none.
func (s *Store) Token() string {
	token, err := s.backend.Get(TokenKey)
	if err != nil {
		return ""
	}
	return token
}

// Cached returns the persisted identity and token. It returns ErrNoSession
// when either entry is missing, and a decode error when the identity is corrupt.
func (s *Store) Cached() (*models.Identity, string, error) {
	token, err := s.backend.Get(TokenKey)
	if err != nil || token == "" {
		return nil, "", ErrNoSession
	}
	raw, err := s.backend.Get(UserKey)
	if err != nil || raw == "" {
		return nil, "", ErrNoSession
	}
	var identity models.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, "", fmt.Errorf("decode cached identity: %w", err)
	}
	return &identity, token, nil
}

// SetIdentity replaces the in-memory identity without touching durable storage.
func (s *Store) SetIdentity(identity *models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Identity = clone(identity)
}

// Resolve ends the loading window. Once resolved, a Store never reports loading again.
func (s *Store) Resolve() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false
}

func clone(identity *models.Identity) *models.Identity {
	if identity == nil {
		return nil
	}
	c := *identity
	return &c
}
