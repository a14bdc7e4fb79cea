// Package session owns the authentication lifecycle: restoring a
// persisted token at startup, logging in and out, and telling the
// rest of the app who the current user is.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/remote"
)

// ErrLoginInFlight is returned when Login is called while another
// login attempt has not finished yet.
var ErrLoginInFlight = errors.New("login already in progress")

// LoginFailedError carries the user-facing reason a login attempt was
// refused.
type LoginFailedError struct {
	Message string
	Err     error
}

func (e *LoginFailedError) Error() string {
	return fmt.Sprintf("login failed: %s", e.Message)
}

func (e *LoginFailedError) Unwrap() error {
	return e.Err
}

type api interface {
	Login(ctx context.Context, email, phone, password string) (remote.LoginResult, error)
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (remote.User, error)
}

// Listener receives a snapshot after every session transition.
type Listener func(domain.Session)

// Manager holds the current session and serialises all transitions.
type Manager struct {
	api    api
	store  tokenStore
	logger *log.Logger

	mu            sync.Mutex
	cur           domain.Session
	listeners     []Listener
	loginInFlight bool
}

type tokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// New builds a manager in the Bootstrapping state. Callers should run
// Bootstrap before reading Current.
func New(api api, store tokenStore, logger *log.Logger) *Manager {
	return &Manager{
		api:    api,
		store:  store,
		logger: logger,
		cur:    domain.Session{Status: domain.SessionBootstrapping},
	}
}

// Current returns a snapshot of the session.
func (m *Manager) Current() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

// Subscribe registers a listener for session transitions. Listeners
// are invoked exactly once per transition, outside the manager's lock.
func (m *Manager) Subscribe(fn Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Bootstrap restores the persisted session, if any. With no stored
// token it settles on Anonymous without touching the network. A stored
// token is validated against the server; any failure purges it. The
// session always leaves the Bootstrapping state; Bootstrap never
// returns an error.
func (m *Manager) Bootstrap(ctx context.Context) {
	token, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Printf("bootstrap: load token: %v", err)
		token = ""
	}
	if token == "" {
		m.transition(domain.Session{Status: domain.SessionAnonymous})
		return
	}

	user, err := m.api.WhoAmI(ctx)
	if err != nil {
		m.logger.Printf("bootstrap: validate token: %v", err)
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Printf("bootstrap: clear token: %v", err)
		}
		m.transition(domain.Session{Status: domain.SessionAnonymous})
		return
	}

	m.transition(domain.Session{
		Token:  token,
		User:   toDomain(user),
		Status: domain.SessionAuthenticated,
	})
}

// Login authenticates with an identifier and password. An identifier
// containing '@' is sent as an email, anything else as a phone number.
// Only one login may be in flight at a time.
func (m *Manager) Login(ctx context.Context, identifier, password string) (*domain.User, error) {
	m.mu.Lock()
	if m.loginInFlight {
		m.mu.Unlock()
		return nil, ErrLoginInFlight
	}
	m.loginInFlight = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.loginInFlight = false
		m.mu.Unlock()
	}()

	var email, phone string
	if strings.Contains(identifier, "@") {
		email = identifier
	} else {
		phone = identifier
	}

	res, err := m.api.Login(ctx, email, phone, password)
	if err != nil {
		return nil, &LoginFailedError{
			Message: remote.UserMessage(err, "Login failed. Please try again."),
			Err:     err,
		}
	}
	if err := m.store.Save(ctx, res.Token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	user := toDomain(res.User)
	m.transition(domain.Session{
		Token:  res.Token,
		User:   user,
		Status: domain.SessionAuthenticated,
	})
	return user, nil
}

// Logout tells the server to revoke the token, then drops the local
// session regardless of the outcome. The local session is always
// cleared, even when the revocation call fails.
func (m *Manager) Logout(ctx context.Context) {
	if m.Current().IsAuthenticated() {
		if err := m.api.Logout(ctx); err != nil {
			m.logger.Printf("logout: revoke token: %v", err)
		}
	}
	m.purge(ctx)
}

// HandleSessionExpired drops the local session after the server
// reported the token invalid. No revocation call is made; the token is
// already dead.
func (m *Manager) HandleSessionExpired() {
	m.logger.Printf("session expired, forcing logout")
	m.purge(context.Background())
}

func (m *Manager) purge(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Printf("clear token: %v", err)
	}
	m.transition(domain.Session{Status: domain.SessionAnonymous})
}

func (m *Manager) transition(next domain.Session) {
	m.mu.Lock()
	m.cur = next
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
}

func toDomain(u remote.User) *domain.User {
	return &domain.User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
	}
}
