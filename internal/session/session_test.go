package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/pharmadash/pharmadash/internal/session"
	"github.com/pharmadash/pharmadash/pkg/errors"
	"github.com/pharmadash/pharmadash/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth scripts the auth API without a network.
type fakeAuth struct {
	loginToken *api.Token
	loginErr   error
	meUser     *api.User
	meErr      error
	regUser    *api.User
	regErr     error

	loginCalls, meCalls, regCalls int
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*api.Token, error) {
	f.loginCalls++
	return f.loginToken, f.loginErr
}

func (f *fakeAuth) Me(ctx context.Context) (*api.User, error) {
	f.meCalls++
	return f.meUser, f.meErr
}

func (f *fakeAuth) Register(ctx context.Context, req api.UserCreate) (*api.User, error) {
	f.regCalls++
	return f.regUser, f.regErr
}

// memStore is an in-memory TokenStore for tests.
type memStore struct {
	token string
}

func (s *memStore) Load() (string, error)   { return s.token, nil }
func (s *memStore) Save(tok string) error   { s.token = tok; return nil }
func (s *memStore) Clear() error            { s.token = ""; return nil }

func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user@x.com",
		"exp": expiry.Unix(),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestInit_NoToken(t *testing.T) {
	store := &memStore{}
	auth := &fakeAuth{}
	mgr := session.NewManager(store, auth, logger.Nop())

	require.NoError(t, mgr.Init(context.Background()))
	assert.Equal(t, session.StateUnauthenticated, mgr.State())
	assert.Zero(t, auth.meCalls, "no whoami call without a token")
}

func TestInit_ValidToken(t *testing.T) {
	store := &memStore{token: signedToken(t, time.Now().Add(time.Hour))}
	auth := &fakeAuth{meUser: &api.User{ID: 1, Email: "user@x.com", Role: "pharmacist"}}
	mgr := session.NewManager(store, auth, logger.Nop())

	require.NoError(t, mgr.Init(context.Background()))
	assert.Equal(t, session.StateAuthenticated, mgr.State())
	require.NotNil(t, mgr.User())
	assert.Equal(t, "user@x.com", mgr.User().Email)
}

func TestInit_RejectedTokenIsDiscarded(t *testing.T) {
	store := &memStore{token: signedToken(t, time.Now().Add(time.Hour))}
	auth := &fakeAuth{meErr: errors.FromStatus(401, "Could not validate credentials")}
	mgr := session.NewManager(store, auth, logger.Nop())

	require.NoError(t, mgr.Init(context.Background()))
	assert.Equal(t, session.StateUnauthenticated, mgr.State())
	assert.Empty(t, store.token, "rejected token must be discarded")
}

func TestInit_LocallyExpiredTokenSkipsNetwork(t *testing.T) {
	store := &memStore{token: signedToken(t, time.Now().Add(-time.Hour))}
	auth := &fakeAuth{}
	mgr := session.NewManager(store, auth, logger.Nop())

	require.NoError(t, mgr.Init(context.Background()))
	assert.Equal(t, session.StateUnauthenticated, mgr.State())
	assert.Empty(t, store.token)
	assert.Zero(t, auth.meCalls, "expired token must not trigger a whoami call")
}

func TestLogin_BadCredentials(t *testing.T) {
	store := &memStore{}
	auth := &fakeAuth{loginErr: errors.FromStatus(401, "Incorrect email or password")}
	mgr := session.NewManager(store, auth, logger.Nop())

	_, err := mgr.Login(context.Background(), "user@x.com", "bad")
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", errors.Detail(err, ""))
	assert.Equal(t, session.StateUnauthenticated, mgr.State())
	assert.Empty(t, store.token, "no token may be persisted on failed login")
}

func TestLogin_Success(t *testing.T) {
	store := &memStore{}
	auth := &fakeAuth{
		loginToken: &api.Token{AccessToken: "tok-abc", TokenType: "bearer"},
		meUser:     &api.User{ID: 1, Email: "user@x.com"},
	}
	mgr := session.NewManager(store, auth, logger.Nop())

	user, err := mgr.Login(context.Background(), "user@x.com", "good")
	require.NoError(t, err)
	assert.Equal(t, "user@x.com", user.Email)
	assert.Equal(t, session.StateAuthenticated, mgr.State())
	assert.Equal(t, "tok-abc", store.token)
}

func TestLogin_ProfileFetchFailureRollsBack(t *testing.T) {
	store := &memStore{}
	auth := &fakeAuth{
		loginToken: &api.Token{AccessToken: "tok-abc", TokenType: "bearer"},
		meErr:      errors.FromStatus(500, "database unavailable"),
	}
	mgr := session.NewManager(store, auth, logger.Nop())

	_, err := mgr.Login(context.Background(), "user@x.com", "good")
	require.Error(t, err)
	assert.Equal(t, session.StateUnauthenticated, mgr.State(), "no half-authenticated state")
	assert.Empty(t, store.token, "token must be discarded when the profile fetch fails")
	assert.Nil(t, mgr.User())
}

func TestLogout(t *testing.T) {
	store := &memStore{token: signedToken(t, time.Now().Add(time.Hour))}
	auth := &fakeAuth{meUser: &api.User{ID: 1, Email: "user@x.com"}}
	mgr := session.NewManager(store, auth, logger.Nop())
	require.NoError(t, mgr.Init(context.Background()))
	require.Equal(t, session.StateAuthenticated, mgr.State())

	require.NoError(t, mgr.Logout())
	assert.Equal(t, session.StateUnauthenticated, mgr.State())
	assert.Empty(t, store.token)
	assert.Nil(t, mgr.User())
}

func TestRegister_AutoLogin(t *testing.T) {
	store := &memStore{}
	auth := &fakeAuth{
		regUser:    &api.User{ID: 2, Email: "new@x.com"},
		loginToken: &api.Token{AccessToken: "tok-new", TokenType: "bearer"},
		meUser:     &api.User{ID: 2, Email: "new@x.com"},
	}
	mgr := session.NewManager(store, auth, logger.Nop())

	user, err := mgr.Register(context.Background(), api.UserCreate{
		Email:    "new@x.com",
		FullName: "New User",
		Password: "password123",
		Role:     "staff",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", user.Email)
	assert.Equal(t, 1, auth.regCalls)
	assert.Equal(t, 1, auth.loginCalls, "registration auto-logs-in")
	assert.Equal(t, session.StateAuthenticated, mgr.State())
}

func TestRegister_FailurePropagates(t *testing.T) {
	store := &memStore{}
	auth := &fakeAuth{regErr: errors.FromStatus(400, "Email already registered")}
	mgr := session.NewManager(store, auth, logger.Nop())

	_, err := mgr.Register(context.Background(), api.UserCreate{
		Email:    "dup@x.com",
		FullName: "Dup",
		Password: "password123",
		Role:     "staff",
	})
	require.Error(t, err)
	assert.Equal(t, "Email already registered", errors.Detail(err, ""))
	assert.Zero(t, auth.loginCalls, "no login attempt after failed registration")
	assert.Equal(t, session.StateUnauthenticated, mgr.State())
}
