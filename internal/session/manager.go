// Package session owns the authentication lifecycle: the current user,
// the bearer token on the API client, and the persisted copy restored
// on process start.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/api"
	"github.com/fakturo/fakturo/internal/models"
)

// AuthError means an explicit login attempt failed. The caller owns
// user-facing presentation.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Manager tracks {currentUser, token, isLoading, isAuthenticated} and
// keeps the API client's token and the persisted store in sync.
type Manager struct {
	client *api.Client
	store  *Store
	logger *zap.Logger

	mu            sync.RWMutex
	user          *models.User
	loading       bool
	authenticated bool
}

// NewManager creates a session manager over the given client and store.
// store may be nil, in which case sessions are not persisted.
func NewManager(client *api.Client, store *Store, logger *zap.Logger) *Manager {
	return &Manager{
		client: client,
		store:  store,
		logger: logger,
	}
}

// Login authenticates with email and password.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	return m.authenticate(func() (*models.AuthResponse, error) {
		return m.client.Login(ctx, models.LoginRequest{Email: email, Password: password})
	})
}

// LoginWithSession exchanges an OAuth redirect session id for a session.
func (m *Manager) LoginWithSession(ctx context.Context, sessionID string) error {
	return m.authenticate(func() (*models.AuthResponse, error) {
		return m.client.CreateSession(ctx, sessionID)
	})
}

// Register creates an account and signs it in.
func (m *Manager) Register(ctx context.Context, email, password, name string) error {
	return m.authenticate(func() (*models.AuthResponse, error) {
		return m.client.Register(ctx, models.RegisterRequest{Email: email, Password: password, Name: name})
	})
}

func (m *Manager) authenticate(exchange func() (*models.AuthResponse, error)) error {
	m.setLoading(true)
	defer m.setLoading(false)

	resp, err := exchange()
	if err != nil {
		return &AuthError{Err: err}
	}

	m.client.SetToken(resp.SessionToken)

	m.mu.Lock()
	user := resp.User
	m.user = &user
	m.authenticated = true
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Save(resp.SessionToken, &user); err != nil {
			// The in-memory session is valid; only restore-on-restart
			// is affected.
			m.logger.Warn("Failed to persist session", zap.Error(err))
		}
	}

	m.logger.Info("Logged in",
		zap.String("user_id", user.UserID),
		zap.String("role", user.Role))
	return nil
}

// Logout invalidates the server-side session best-effort and clears
// local state unconditionally. A network failure must never leave the
// client looking authenticated.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.client.Logout(ctx); err != nil {
		m.logger.Warn("Server-side logout failed, clearing local state anyway", zap.Error(err))
	}

	m.client.ClearToken()

	m.mu.Lock()
	m.user = nil
	m.authenticated = false
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Clear(); err != nil {
			m.logger.Warn("Failed to clear persisted session", zap.Error(err))
		}
	}

	m.logger.Info("Logged out")
}

// RefreshUser re-fetches the current user record to pick up role or
// company changes. Authentication status is unchanged on failure.
func (m *Manager) RefreshUser(ctx context.Context) error {
	user, err := m.client.Me(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Save(m.client.Token(), user); err != nil {
			m.logger.Warn("Failed to persist refreshed user", zap.Error(err))
		}
	}
	return nil
}

// SetUser replaces the cached user, e.g. after accepting an invitation.
func (m *Manager) SetUser(user *models.User) {
	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
}

// Restore attempts to resume a persisted session on process start. Any
// failure (no session, rejected token, unreachable backend) falls back
// to the unauthenticated state silently.
func (m *Manager) Restore(ctx context.Context) {
	if m.store == nil {
		return
	}

	m.setLoading(true)
	defer m.setLoading(false)

	token, user, err := m.store.Load()
	if err != nil {
		if err != ErrNoSession {
			m.logger.Debug("Could not load persisted session", zap.Error(err))
		}
		return
	}

	m.client.SetToken(token)

	// Validate against the backend; a stale token must not present an
	// authenticated-looking state.
	fresh, err := m.client.Me(ctx)
	if err != nil {
		if api.IsTransport(err) {
			// Offline start: trust the persisted copy until a request
			// fails for real.
			m.logger.Debug("Backend unreachable during restore, using persisted user")
			fresh = user
		} else {
			m.logger.Debug("Persisted token rejected", zap.Error(err))
			m.client.ClearToken()
			_ = m.store.Clear()
			return
		}
	}

	m.mu.Lock()
	m.user = fresh
	m.authenticated = true
	m.mu.Unlock()
}

// CurrentUser returns a copy of the cached user, or nil when logged out.
func (m *Manager) CurrentUser() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

// CurrentRole implements roles.UserSource.
func (m *Manager) CurrentRole() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return ""
	}
	return m.user.Role
}

// IsAuthenticated reports whether a login or restore succeeded.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

// IsLoading reports whether an auth operation is in flight.
func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}
