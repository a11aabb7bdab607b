// Package session owns the authentication lifecycle: it exchanges
// credentials for a token, persists the token locally, and tells the rest
// of the application who is signed in. Which cart backing store is active
// follows directly from this state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jcmexdev/storefront/internal/api"
	"github.com/jcmexdev/storefront/internal/localstore"
)

// ErrNotAuthenticated is returned by operations that require a signed-in
// user. Callers typically redirect to login and re-invoke afterward.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// Role gates the admin surface.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// roleFromWire normalises the backend's role spelling ("ADMIN"/"CUSTOMER").
func roleFromWire(s string) Role {
	if s == "ADMIN" || s == "admin" {
		return RoleAdmin
	}
	return RoleCustomer
}

// Session is the authenticated identity.
type Session struct {
	UserID      string
	Username    string
	Email       string
	Role        Role
	AccessToken string
}

// IsAdmin reports whether the session may use admin operations.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

// Backend is the slice of the remote auth API this package needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (api.TokenData, error)
	Register(ctx context.Context, username, email, password, password2 string) (api.UserData, error)
	Me(ctx context.Context) (api.UserData, error)
}

// TokenSink receives the access token so outgoing requests carry it.
// *api.Client satisfies it.
type TokenSink interface {
	SetToken(token string)
}

// Manager holds the current session. store may be nil (no persistence).
type Manager struct {
	backend Backend
	sink    TokenSink
	store   *localstore.Store

	mu      sync.RWMutex
	current *Session
}

// NewManager creates a signed-out Manager.
func NewManager(backend Backend, sink TokenSink, store *localstore.Store) *Manager {
	return &Manager{backend: backend, sink: sink, store: store}
}

// Current returns the active session, or nil for a guest.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Login authenticates and installs the resulting session.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, api.Errorf(api.KindValidation, "session: email and password are required")
	}

	tokens, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("session: login: %w", err)
	}
	return m.install(ctx, tokens.Access)
}

// Register creates an account and logs it in. The password confirmation is
// checked locally before any network call.
func (m *Manager) Register(ctx context.Context, username, email, password, password2 string) (*Session, error) {
	if username == "" || email == "" || password == "" {
		return nil, api.Errorf(api.KindValidation, "session: username, email and password are required")
	}
	if password != password2 {
		return nil, api.Errorf(api.KindValidation, "session: passwords do not match")
	}

	if _, err := m.backend.Register(ctx, username, email, password, password2); err != nil {
		return nil, fmt.Errorf("session: register: %w", err)
	}
	tokens, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("session: login after register: %w", err)
	}
	return m.install(ctx, tokens.Access)
}

// install activates a credential: sets it on the sink, resolves the user,
// persists the credential, and publishes the session.
func (m *Manager) install(ctx context.Context, token string) (*Session, error) {
	m.sink.SetToken(token)

	user, err := m.backend.Me(ctx)
	if err != nil {
		m.sink.SetToken("")
		return nil, fmt.Errorf("session: resolve user: %w", err)
	}

	sess := &Session{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        roleFromWire(user.Role),
		AccessToken: token,
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	if m.store != nil {
		err := m.store.SaveCredential(ctx, localstore.Credential{
			AccessToken: token,
			UserID:      user.ID,
		})
		if err != nil {
			slog.WarnContext(ctx, "credential not persisted", "error", err)
		}
	}

	slog.InfoContext(ctx, "session established", "user_id", user.ID, "role", string(sess.Role))
	return sess, nil
}

// Restore loads a persisted credential and revalidates it against the
// backend. An expired or rejected credential is discarded silently; the
// user simply starts as a guest.
func (m *Manager) Restore(ctx context.Context) (*Session, error) {
	if m.store == nil {
		return nil, nil
	}
	cred, err := m.store.Credential(ctx)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, nil
	}

	sess, err := m.install(ctx, cred.AccessToken)
	if err != nil {
		if api.KindOf(err) == api.KindAuthorization {
			_ = m.store.DeleteCredential(ctx)
			return nil, nil
		}
		return nil, err
	}
	return sess, nil
}

// Logout destroys the session: the token leaves the sink and local storage,
// and Current reverts to nil.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	m.sink.SetToken("")
	if m.store != nil {
		if err := m.store.DeleteCredential(ctx); err != nil {
			slog.WarnContext(ctx, "credential not deleted", "error", err)
		}
	}
}

// apiBackend adapts *api.Client to Backend.
type apiBackend struct {
	client *api.Client
}

// NewAPIBackend wraps the REST client as the auth Backend.
func NewAPIBackend(client *api.Client) Backend {
	return &apiBackend{client: client}
}

func (b *apiBackend) Login(ctx context.Context, email, password string) (api.TokenData, error) {
	return b.client.Login(ctx, email, password)
}

func (b *apiBackend) Register(ctx context.Context, username, email, password, password2 string) (api.UserData, error) {
	return b.client.Register(ctx, username, email, password, password2)
}

func (b *apiBackend) Me(ctx context.Context) (api.UserData, error) {
	return b.client.Me(ctx)
}
