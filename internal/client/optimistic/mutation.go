// Package optimistic implements the vote and like interactions: the request
// is fired without blocking the screen, and the backend's answer, never a
// local guess, becomes the entity's new state.
package optimistic

import (
	"context"
	"errors"
	"sync"

	"github.com/atinyakov/civica/internal/client/gateway"
	"github.com/atinyakov/civica/internal/client/notify"
)

// ErrNotAuthenticated is returned when a signed-out viewer tries to mutate.
var ErrNotAuthenticated = errors.New("not authenticated")

// Guard reports whether the viewer is signed in.
type Guard interface {
	IsAuthenticated() bool
}

// Set is screen state for a collection of entities keyed by id.
type Set[S any] struct {
	mu    sync.RWMutex
	items map[string]S
}

// NewSet returns an empty Set.
func NewSet[S any]() *Set[S] {
	return &Set[S]{items: make(map[string]S)}
}

// Get returns the state of id.
func (s *Set[S]) Get(id string) (S, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[id]
	return v, ok
}

// Put replaces the state of id.
func (s *Set[S]) Put(id string, v S) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = v
}

// Delete forgets id.
func (s *Set[S]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

// Mutation runs remote mutations against one Set.
//
// Nothing is written to the Set until the backend has answered, so a failed
// request leaves the entity exactly as it was. Concurrent mutations of the
// same entity are not coalesced: the last response to arrive wins.
type Mutation[S any] struct {
	Entities *Set[S]
	Guard    Guard
	Notifier notify.Notifier
	// DeniedMessage is shown when the viewer is signed out.
	DeniedMessage string
	// FailedMessage is shown when the request fails and the user has not
	// already been told why, either by the gateway or by its unauthorized
	// observers.
	FailedMessage string
}

// Run sends the mutation for id. send receives the entity's current state and
// returns the state reported by the backend, which is then stored verbatim.
func (m *Mutation[S]) Run(ctx context.Context, id string, send func(ctx context.Context, current S) (S, error)) (S, error) {
	var zero S
	if !m.Guard.IsAuthenticated() {
		m.notifier().Error(m.DeniedMessage)
		return zero, ErrNotAuthenticated
	}

	current, _ := m.Entities.Get(id)
	next, err := send(ctx, current)
	if err != nil {
		if !gateway.Surfaced(err) && !errors.Is(err, gateway.ErrUnauthorized) {
			m.notifier().Error(m.FailedMessage)
		}
		return zero, err
	}

	m.Entities.Put(id, next)
	return next, nil
}

func (m *Mutation[S]) notifier() notify.Notifier {
	if m.Notifier == nil {
		return notify.Nop{}
	}
	return m.Notifier
}
