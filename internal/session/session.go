package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/pharmadash/pharmadash/pkg/logger"
)

// State is the session lifecycle state.
type State int

const (
	// StateUnauthenticated means no usable token exists.
	StateUnauthenticated State = iota
	// StateLoading means a persisted token exists but the identity behind it
	// has not been confirmed yet.
	StateLoading
	// StateAuthenticated means the server confirmed the token and a profile
	// is loaded.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// AuthAPI is the slice of the API client the session manager needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.Token, error)
	Me(ctx context.Context) (*api.User, error)
	Register(ctx context.Context, req api.UserCreate) (*api.User, error)
}

// Manager owns the session state machine. It is an explicit object with
// injected dependencies rather than package-level state, and its only side
// effects are the token store and its own in-memory fields.
type Manager struct {
	store  TokenStore
	auth   AuthAPI
	logger *logger.Logger

	mu    sync.RWMutex
	state State
	user  *api.User
}

// NewManager creates a session manager.
func NewManager(store TokenStore, auth AuthAPI, log *logger.Logger) *Manager {
	return &Manager{
		store:  store,
		auth:   auth,
		logger: log.WithComponent("session"),
		state:  StateUnauthenticated,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// User returns the confirmed profile, nil unless Authenticated.
func (m *Manager) User() *api.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Init resumes a persisted session. With a token present the manager enters
// Loading and confirms the identity with a whoami call; any failure discards
// the token and lands in Unauthenticated. Init never fabricates a session.
func (m *Manager) Init(ctx context.Context) error {
	token, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("load session token: %w", err)
	}
	if token == "" {
		m.setState(StateUnauthenticated, nil)
		return nil
	}

	// A locally-expired token cannot pass whoami; skip the round-trip.
	// Signature verification stays the server's job.
	if tokenExpired(token) {
		m.logger.Debug().Msg("persisted token expired, discarding")
		m.discard()
		return nil
	}

	m.setState(StateLoading, nil)

	user, err := m.auth.Me(ctx)
	if err != nil {
		m.logger.Debug().Err(err).Msg("token validation failed, discarding session")
		m.discard()
		return nil
	}

	m.setState(StateAuthenticated, user)
	m.logger.Info().Str("email", user.Email).Msg("session resumed")
	return nil
}

// Login authenticates with credentials and confirms the identity. The token
// is persisted only for the whoami call; if that call fails the token is
// discarded and the error propagates, so there is no half-authenticated
// state where a token exists without a confirmed profile.
func (m *Manager) Login(ctx context.Context, email, password string) (*api.User, error) {
	token, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := m.store.Save(token.AccessToken); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	user, err := m.auth.Me(ctx)
	if err != nil {
		m.discard()
		return nil, fmt.Errorf("confirm identity: %w", err)
	}

	m.setState(StateAuthenticated, user)
	m.logger.Info().Str("email", user.Email).Msg("logged in")
	return user, nil
}

// Logout clears the persisted token and resets to Unauthenticated.
func (m *Manager) Logout() error {
	err := m.store.Clear()
	m.setState(StateUnauthenticated, nil)
	m.logger.Info().Msg("logged out")
	return err
}

// Register creates an account and immediately logs in with the same
// credentials. Errors propagate to the caller for display.
func (m *Manager) Register(ctx context.Context, req api.UserCreate) (*api.User, error) {
	if _, err := m.auth.Register(ctx, req); err != nil {
		return nil, err
	}
	return m.Login(ctx, req.Email, req.Password)
}

func (m *Manager) setState(state State, user *api.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.user = user
}

func (m *Manager) discard() {
	if err := m.store.Clear(); err != nil {
		m.logger.Error().Err(err).Msg("failed to clear token store")
	}
	m.setState(StateUnauthenticated, nil)
}

// tokenExpired reports whether the JWT carries an exp claim in the past.
// Unparseable tokens and tokens without exp are left for the server to judge.
func tokenExpired(token string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
