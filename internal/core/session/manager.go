// Package session owns the client-side session: the in-memory store, its
// persisted shadow and the login/register/logout flows that mutate both.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gccconnect/connect/internal/core/domain"
	"github.com/gccconnect/connect/internal/core/ports"
)

// DraftValidator checks a registration draft before it reaches the verifier.
type DraftValidator interface {
	Struct(i any) error
}

// Manager is the single writer of a Store.
type Manager struct {
	mu        sync.Mutex
	store     *Store
	persister *Persister
	verifier  ports.CredentialVerifier
	nav       ports.Navigator
	validator DraftValidator
	log       zerolog.Logger
	now       func() time.Time
}

func NewManager(
	store *Store,
	persister *Persister,
	verifier ports.CredentialVerifier,
	nav ports.Navigator,
	validator DraftValidator,
	log zerolog.Logger,
) *Manager {
	return &Manager{
		store:     store,
		persister: persister,
		verifier:  verifier,
		nav:       nav,
		validator: validator,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Init rehydrates the store from persisted storage. Missing data leaves the
// store anonymous. Corrupt data is cleared and also leaves it anonymous; only
// storage read failures are returned.
func (m *Manager) Init(ctx context.Context) (domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.persister.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrStorageCorruption):
		m.log.Warn().Err(err).Msg("discarding corrupt stored session")
		if cerr := m.persister.Clear(ctx); cerr != nil {
			m.log.Warn().Err(cerr).Msg("clear corrupt session")
		}
		return m.store.Clear(), nil
	case err != nil:
		return m.store.Snapshot(), fmt.Errorf("rehydrate session: %w", err)
	case sess == nil:
		m.log.Debug().Msg("no stored session")
		return m.store.Snapshot(), nil
	}

	m.log.Info().
		Str("user_id", sess.Identity.ID).
		Str("role", string(sess.Identity.Role)).
		Msg("session rehydrated")
	return m.store.Set(*sess), nil
}

// Login verifies credentials, commits the session and navigates to the
// pending-approval screen or the role dashboard. The returned route is where
// navigation landed.
func (m *Manager) Login(ctx context.Context, email, password string) (*domain.Identity, domain.Route, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", domain.ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.verifier.Verify(ctx, domain.Credentials{Email: email, Password: password})
	if err != nil {
		m.log.Info().Str("email", email).Err(err).Msg("login failed")
		return nil, "", err
	}

	m.commit(ctx, res)

	target := domain.DashboardFor(res.Identity.Role)
	if !res.Identity.Approved() {
		target = domain.RoutePendingApproval
	}
	landed := m.nav.Navigate(ctx, target)

	m.log.Info().
		Str("user_id", res.Identity.ID).
		Str("role", string(res.Identity.Role)).
		Str("approval_status", string(res.Identity.ApprovalStatus)).
		Str("route", string(landed)).
		Msg("login succeeded")

	identity := res.Identity
	return &identity, landed, nil
}

// Register validates the draft, creates a pending identity, commits the
// session and navigates to the pending-approval screen.
func (m *Manager) Register(ctx context.Context, draft domain.RegistrationDraft) (*domain.Identity, domain.Route, error) {
	draft.Email = strings.TrimSpace(draft.Email)
	draft.Name = strings.TrimSpace(draft.Name)
	if err := m.validator.Struct(draft); err != nil {
		return nil, "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.verifier.Create(ctx, draft)
	if err != nil {
		m.log.Info().Str("email", draft.Email).Err(err).Msg("registration failed")
		return nil, "", err
	}

	m.commit(ctx, res)
	landed := m.nav.Navigate(ctx, domain.RoutePendingApproval)

	m.log.Info().
		Str("user_id", res.Identity.ID).
		Str("role", string(res.Identity.Role)).
		Msg("registration succeeded")

	identity := res.Identity
	return &identity, landed, nil
}

// Logout clears storage, then the store, then navigates to login. It is safe
// to call without a session.
func (m *Manager) Logout(ctx context.Context) domain.Route {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.persister.Clear(ctx); err != nil {
		m.log.Warn().Err(err).Msg("clear stored session")
	}
	m.store.Clear()
	m.log.Info().Msg("logged out")

	return m.nav.Navigate(ctx, domain.RouteLogin)
}

// commit persists first and then publishes to the store. A persistence
// failure keeps the in-memory session.
func (m *Manager) commit(ctx context.Context, res *domain.AuthResult) {
	sess := domain.Session{Identity: res.Identity, Token: res.Token, CreatedAt: m.now()}
	if err := m.persister.Save(ctx, sess); err != nil {
		m.log.Warn().Err(err).Str("user_id", sess.Identity.ID).Msg("persist session")
	}
	m.store.Set(sess)
}

func (m *Manager) CurrentRole() (domain.Role, bool) {
	return m.store.Snapshot().Role()
}

func (m *Manager) IsApproved() bool {
	return m.store.Snapshot().Approved()
}

func (m *Manager) IsLoggedIn() bool {
	return m.store.Snapshot().LoggedIn()
}

// Token returns the current bearer token, or "" when anonymous.
func (m *Manager) Token() string {
	return m.store.Snapshot().Token()
}

func (m *Manager) Snapshot() domain.Snapshot {
	return m.store.Snapshot()
}
