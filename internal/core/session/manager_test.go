package session

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiercm/gymdesk/internal/core/apierr"
)

type fakeBackend struct {
	createTokenPair TokenPair
	createTokenErr  error
	verifyErr       error
	refreshAccess   string
	refreshErr      error
	user            User
	userErr         error
	registerUser    User
	registerErr     error
	setPasswordErr  error
	resetErr        error

	createCalls  int
	verifyCalls  int
	refreshCalls int
	userCalls    int
}

func (f *fakeBackend) CreateToken(ctx context.Context, email, password string) (TokenPair, error) {
	f.createCalls++
	return f.createTokenPair, f.createTokenErr
}

func (f *fakeBackend) VerifyToken(ctx context.Context, token string) error {
	f.verifyCalls++
	return f.verifyErr
}

func (f *fakeBackend) RefreshAccess(ctx context.Context, refresh string) (string, error) {
	f.refreshCalls++
	return f.refreshAccess, f.refreshErr
}

func (f *fakeBackend) CurrentUser(ctx context.Context) (User, error) {
	f.userCalls++
	return f.user, f.userErr
}

func (f *fakeBackend) Register(ctx context.Context, in RegisterInput) (User, error) {
	return f.registerUser, f.registerErr
}

func (f *fakeBackend) SetPassword(ctx context.Context, current, newPassword string) error {
	return f.setPasswordErr
}

func (f *fakeBackend) ResetPassword(ctx context.Context, email string) error {
	return f.resetErr
}

type memStore struct {
	creds  Credentials
	saves  int
	clears int
}

func (s *memStore) Load() (Credentials, error) { return s.creds, nil }

func (s *memStore) Save(c Credentials) error {
	s.creds = c
	s.saves++
	return nil
}

func (s *memStore) Clear() error {
	s.creds = Credentials{}
	s.clears++
	return nil
}

func newTestManager(b *fakeBackend, s *memStore) *Manager {
	return NewManager(b, s, zerolog.Nop())
}

// consistent asserts the token/user atomicity invariant: the session is
// authenticated iff tokens and user are all present.
func consistent(t *testing.T, m *Manager) {
	t.Helper()
	authed := m.State() == StateAuthenticated
	hasAll := m.AccessToken() != "" && m.RefreshToken() != "" && m.CurrentUser() != nil
	assert.Equal(t, authed, hasAll, "tokens and user must be present exactly when authenticated")
}

func TestManager_login_success(t *testing.T) {
	backend := &fakeBackend{
		createTokenPair: TokenPair{Access: "a1", Refresh: "r1"},
		user:            User{ID: 1, Email: "x@y.com"},
	}
	store := &memStore{}
	m := newTestManager(backend, store)

	res := m.Login(context.Background(), "x@y.com", "pw")

	require.True(t, res.OK)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "a1", m.AccessToken())
	assert.Equal(t, "r1", m.RefreshToken())
	require.NotNil(t, m.CurrentUser())
	assert.Equal(t, "x@y.com", m.CurrentUser().Email)
	require.NotNil(t, store.creds.User)
	assert.Equal(t, "a1", store.creds.AccessToken, "tokens persisted on login")
	consistent(t, m)
}

func TestManager_login_bad_credentials(t *testing.T) {
	backend := &fakeBackend{
		createTokenErr: &apierr.Error{StatusCode: 401, Detail: "Credenciales incorrectas"},
	}
	m := newTestManager(backend, &memStore{})

	res := m.Login(context.Background(), "x@y.com", "wrong")

	assert.False(t, res.OK)
	assert.Equal(t, "Credenciales incorrectas", res.Message)
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Equal(t, "Credenciales incorrectas", m.Err())
	assert.Empty(t, m.AccessToken())
	consistent(t, m)
}

func TestManager_login_401_without_detail_uses_fallback(t *testing.T) {
	backend := &fakeBackend{createTokenErr: &apierr.Error{StatusCode: 401}}
	m := newTestManager(backend, &memStore{})

	res := m.Login(context.Background(), "x@y.com", "wrong")

	assert.Equal(t, msgBadCredentials, res.Message)
}

func TestManager_login_network_error_message(t *testing.T) {
	backend := &fakeBackend{createTokenErr: errors.New("dial tcp: connection refused")}
	m := newTestManager(backend, &memStore{})

	res := m.Login(context.Background(), "x@y.com", "pw")

	assert.False(t, res.OK)
	assert.Equal(t, msgConnectionError, res.Message, "raw transport errors never reach the user")
}

func TestManager_login_rolls_back_on_profile_fetch_failure(t *testing.T) {
	backend := &fakeBackend{
		createTokenPair: TokenPair{Access: "a1", Refresh: "r1"},
		userErr:         errors.New("boom"),
	}
	store := &memStore{}
	m := newTestManager(backend, store)

	res := m.Login(context.Background(), "x@y.com", "pw")

	assert.False(t, res.OK)
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Empty(t, m.AccessToken(), "minted tokens rolled back")
	assert.True(t, store.creds.Empty())
	consistent(t, m)
}

func TestManager_atomicity_across_lifecycle(t *testing.T) {
	backend := &fakeBackend{
		createTokenPair: TokenPair{Access: "a1", Refresh: "r1"},
		user:            User{ID: 1, Email: "x@y.com"},
	}
	m := newTestManager(backend, &memStore{})

	m.Initialize(context.Background())
	consistent(t, m)

	m.Login(context.Background(), "x@y.com", "pw")
	consistent(t, m)

	m.StoreAccessToken("a2")
	consistent(t, m)

	m.Logout()
	consistent(t, m)

	m.Login(context.Background(), "x@y.com", "pw")
	consistent(t, m)

	m.Invalidate()
	consistent(t, m)
}

func TestManager_initialize_empty_store(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestManager(backend, &memStore{})

	m.Initialize(context.Background())

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Zero(t, backend.verifyCalls, "no verification without a stored token")
}

func TestManager_initialize_valid_token_restores_session(t *testing.T) {
	backend := &fakeBackend{}
	store := &memStore{creds: Credentials{
		AccessToken:  "a1",
		RefreshToken: "r1",
		User:         &User{ID: 1, Email: "x@y.com"},
	}}
	m := newTestManager(backend, store)

	m.Initialize(context.Background())

	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "a1", m.AccessToken())
	assert.Zero(t, backend.userCalls, "stored profile reused")
	consistent(t, m)
}

func TestManager_initialize_silent_refresh(t *testing.T) {
	backend := &fakeBackend{
		verifyErr:     errors.New("token expired"),
		refreshAccess: "a2",
		user:          User{ID: 1, Email: "x@y.com"},
	}
	store := &memStore{creds: Credentials{
		AccessToken:  "a1",
		RefreshToken: "r1",
		User:         &User{ID: 1, Email: "x@y.com"},
	}}
	m := newTestManager(backend, store)

	m.Initialize(context.Background())

	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "a2", m.AccessToken(), "refreshed token adopted")
	assert.Equal(t, 1, backend.refreshCalls)
	assert.Equal(t, "a2", store.creds.AccessToken, "rotation persisted")
	consistent(t, m)
}

func TestManager_initialize_refresh_failure_clears_everything(t *testing.T) {
	backend := &fakeBackend{
		verifyErr:  errors.New("token expired"),
		refreshErr: errors.New("refresh expired"),
	}
	store := &memStore{creds: Credentials{
		AccessToken:  "a1",
		RefreshToken: "r1",
		User:         &User{ID: 1, Email: "x@y.com"},
	}}
	m := newTestManager(backend, store)

	m.Initialize(context.Background())

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Empty(t, m.AccessToken())
	assert.Empty(t, m.RefreshToken())
	assert.Nil(t, m.CurrentUser())
	assert.True(t, store.creds.Empty(), "durable state cleared too")
	consistent(t, m)
}

func TestManager_invalidate_forces_logout(t *testing.T) {
	backend := &fakeBackend{
		createTokenPair: TokenPair{Access: "a1", Refresh: "r1"},
		user:            User{ID: 1, Email: "x@y.com"},
	}
	store := &memStore{}
	m := newTestManager(backend, store)
	require.True(t, m.Login(context.Background(), "x@y.com", "pw").OK)

	m.Invalidate()

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Empty(t, m.AccessToken())
	assert.Nil(t, m.CurrentUser())
	assert.True(t, store.creds.Empty())
	consistent(t, m)
}

func TestManager_register_does_not_authenticate(t *testing.T) {
	backend := &fakeBackend{registerUser: User{ID: 2, Email: "new@y.com"}}
	m := newTestManager(backend, &memStore{})

	res := m.Register(context.Background(), RegisterInput{Email: "new@y.com", Password: "pw"})

	assert.True(t, res.OK)
	assert.NotEmpty(t, res.Message)
	assert.NotEqual(t, StateAuthenticated, m.State())
	assert.Empty(t, m.AccessToken())
}

func TestManager_register_surfaces_field_errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "email conflict",
			err:  &apierr.Error{StatusCode: 400, Fields: map[string][]string{"email": {"already exists"}}},
			want: "Email: already exists",
		},
		{
			name: "password policy",
			err:  &apierr.Error{StatusCode: 400, Fields: map[string][]string{"password": {"too short"}}},
			want: "Password: too short",
		},
		{
			name: "non field errors",
			err:  &apierr.Error{StatusCode: 400, Fields: map[string][]string{"non_field_errors": {"nope"}}},
			want: "nope",
		},
		{
			name: "network failure",
			err:  errors.New("dial tcp"),
			want: msgConnectionError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(&fakeBackend{registerErr: tt.err}, &memStore{})
			res := m.Register(context.Background(), RegisterInput{})
			assert.False(t, res.OK)
			assert.Equal(t, tt.want, res.Message)
		})
	}
}

func TestManager_change_password_maps_current_password_error(t *testing.T) {
	backend := &fakeBackend{setPasswordErr: &apierr.Error{
		StatusCode: 400,
		Fields:     map[string][]string{"current_password": {"Invalid password."}},
	}}
	m := newTestManager(backend, &memStore{})

	res := m.ChangePassword(context.Background(), "old", "new")

	assert.False(t, res.OK)
	assert.Equal(t, "Current password is incorrect", res.Message)
}

func TestManager_update_user_merges_and_persists(t *testing.T) {
	backend := &fakeBackend{
		createTokenPair: TokenPair{Access: "a1", Refresh: "r1"},
		user:            User{ID: 1, Email: "x@y.com", FirstName: "Ana"},
	}
	store := &memStore{}
	m := newTestManager(backend, store)
	require.True(t, m.Login(context.Background(), "x@y.com", "pw").OK)

	phone := "5551234"
	m.UpdateUser(ProfileUpdate{Phone: &phone})

	require.NotNil(t, m.CurrentUser())
	assert.Equal(t, "5551234", m.CurrentUser().Phone)
	assert.Equal(t, "Ana", m.CurrentUser().FirstName, "untouched fields survive the merge")
	require.NotNil(t, store.creds.User)
	assert.Equal(t, "5551234", store.creds.User.Phone, "merged profile written through")
}

func TestManager_update_user_noop_when_logged_out(t *testing.T) {
	store := &memStore{}
	m := newTestManager(&fakeBackend{}, store)

	phone := "5551234"
	m.UpdateUser(ProfileUpdate{Phone: &phone})

	assert.Nil(t, m.CurrentUser())
	assert.Zero(t, store.saves)
}

func TestManager_subscribers_notified_on_transitions(t *testing.T) {
	backend := &fakeBackend{
		createTokenPair: TokenPair{Access: "a1", Refresh: "r1"},
		user:            User{ID: 1, Email: "x@y.com"},
	}
	m := newTestManager(backend, &memStore{})

	var fired int
	m.Subscribe(func() { fired++ })

	m.Login(context.Background(), "x@y.com", "pw")
	assert.Greater(t, fired, 0)

	before := fired
	m.Logout()
	assert.Greater(t, fired, before)
}
