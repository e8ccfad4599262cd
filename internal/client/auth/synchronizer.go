// Package auth keeps the client's identity consistent with the backend. The
// Synchronizer is the only component that changes the session state; every
// other component reads it.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/civica/internal/client/gateway"
	"github.com/atinyakov/civica/internal/client/notify"
	"github.com/atinyakov/civica/internal/client/storage"
	"github.com/atinyakov/civica/internal/models"
)

// Fallback messages used when the backend does not explain a failure.
const (
	MsgLoginFailed    = "login failed"
	MsgRegisterFailed = "registration failed"
	MsgUpdateFailed   = "profile update failed"
)

var (
	// ErrValidation marks failures detected before any request was sent.
	ErrValidation = errors.New("validation failed")
	// errMalformed marks a success response without a token or identity.
	errMalformed = errors.New("malformed auth response")
)

// Error carries a human-readable message for the caller to show.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// API is the subset of the backend the synchronizer talks to.
type API interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error)
	Profile(ctx context.Context) (*models.Identity, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.Identity, error)
}

// Synchronizer owns the session state held by a storage.Store.
//
// The four mutating operations take no lock of their own: concurrent calls
// resolve last-write-wins on the stored identity.
type Synchronizer struct {
	store    *storage.Store
	api      API
	notifier notify.Notifier
	log      *zap.Logger

	once sync.Once
	done chan struct{}
}

// New returns a Synchronizer. Call Init once the application starts.
func New(store *storage.Store, api API, notifier notify.Notifier, log *zap.Logger) *Synchronizer {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Synchronizer{
		store:    store,
		api:      api,
		notifier: notifier,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Init reconciles the persisted session with the backend and ends the loading
// window. Only the first call does any work; later calls return immediately
// after the first has finished.
//
// When a cached identity exists it becomes the in-memory identity before the
// profile request is sent, then is replaced by the backend's answer. Any
// failure of that request purges the persisted session.
func (s *Synchronizer) Init(ctx context.Context) {
	s.once.Do(func() {
		defer close(s.done)
		defer s.store.Resolve()
		s.reconcile(ctx)
	})
	<-s.done
}

// Done is closed when Init has resolved the loading window.
func (s *Synchronizer) Done() <-chan struct{} {
	return s.done
}

func (s *Synchronizer) reconcile(ctx context.Context) {
	cached, _, err := s.store.Cached()
	if errors.Is(err, storage.ErrNoSession) {
		s.log.Info("no persisted session")
		return
	}
	if err != nil {
		s.log.Warn("persisted session is corrupt, clearing", zap.Error(err))
		s.store.Clear()
		return
	}

	s.store.SetIdentity(cached)

	fresh, err := s.api.Profile(ctx)
	if err == nil && fresh == nil {
		err = errMalformed
	}
	if err != nil {
		s.log.Warn("persisted session rejected, clearing", zap.Error(err))
		s.store.Clear()
		return
	}
	s.store.SetIdentity(fresh)
	s.log.Info("session restored", zap.String("user_id", fresh.ID))
}

// State returns the current session state.
func (s *Synchronizer) State() models.State {
	return s.store.Read()
}

// IsAuthenticated reports whether an identity is present.
func (s *Synchronizer) IsAuthenticated() bool {
	return s.store.Read().Identity != nil
}

// IsAdmin reports whether the current identity has the admin role.
func (s *Synchronizer) IsAdmin() bool {
	return s.store.Read().Identity.IsAdmin()
}

// Login authenticates with email and password and persists the session.
// On failure the session state is left unchanged.
func (s *Synchronizer) Login(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return &Error{Message: "email and password are required", Err: ErrValidation}
	}
	resp, err := s.api.Login(ctx, email, password)
	if err := s.establish(resp, err, MsgLoginFailed); err != nil {
		return err
	}
	s.notifier.Success("logged in")
	return nil
}

// Register creates an account and persists its session.
// On failure the session state is left unchanged.
func (s *Synchronizer) Register(ctx context.Context, name, email, password string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return &Error{Message: "name, email and password are required", Err: ErrValidation}
	}
	resp, err := s.api.Register(ctx, name, email, password)
	if err := s.establish(resp, err, MsgRegisterFailed); err != nil {
		return err
	}
	s.notifier.Success("registered")
	return nil
}

func (s *Synchronizer) establish(resp *models.AuthResponse, err error, fallback string) error {
	if err == nil && (resp == nil || resp.Token == "" || resp.User == nil) {
		err = errMalformed
	}
	if err != nil {
		return &Error{Message: gateway.Message(err, fallback), Err: err}
	}
	s.store.Write(resp.User, resp.Token)
	s.log.Info("session established", zap.String("user_id", resp.User.ID))
	return nil
}

// Logout clears the session. It never fails and sends no request.
func (s *Synchronizer) Logout() {
	s.store.Clear()
	s.notifier.Success("logged out")
}

// Expire clears the session silently. It is meant for the gateway's
// unauthorized observer, after the credential has already been rejected.
func (s *Synchronizer) Expire() {
	s.store.Clear()
}

// UpdateProfile sends a partial update and stores the identity the backend
// returns, keeping the current token. On failure nothing changes.
func (s *Synchronizer) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	updated, err := s.api.UpdateProfile(ctx, update)
	if err == nil && updated == nil {
		err = errMalformed
	}
	if err != nil {
		return &Error{Message: gateway.Message(err, MsgUpdateFailed), Err: err}
	}
	s.store.Write(updated, s.store.Token())
	s.notifier.Success("profile updated")
	return nil
}
