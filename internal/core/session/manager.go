package session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/javiercm/gymdesk/internal/core/apierr"
)

// Fallback messages shown when the backend gives nothing usable.
const (
	msgBadCredentials  = "Incorrect credentials"
	msgConnectionError = "Connection error, try again."
	msgGenericFailure  = "Something went wrong, try again."
)

// ProfileUpdate carries a partial profile edit. Nil fields are left
// untouched by UpdateUser.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// Manager owns the session state machine. Tokens and user move together:
// the session is authenticated iff both tokens and the user profile are
// present, and every transition writes through to the credential store.
//
// Manager also serves as the api client's credential source, so a token
// rotated (or invalidated) by the refresh protocol mid-request lands in
// the same state and the same file as one minted by Login.
type Manager struct {
	mu      sync.Mutex
	backend Backend
	store   CredentialStore
	log     zerolog.Logger

	state   State
	user    *User
	access  string
	refresh string
	lastErr string
	loading bool

	subs []func()
}

// NewManager wires a manager to its backend and durable store. The
// session starts in StateLoading until Initialize settles it.
func NewManager(backend Backend, store CredentialStore, log zerolog.Logger) *Manager {
	return &Manager{
		backend: backend,
		store:   store,
		log:     log,
		state:   StateLoading,
	}
}

// Subscribe registers a callback invoked after every state change.
// Callbacks run outside the manager lock.
func (m *Manager) Subscribe(fn func()) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

func (m *Manager) publish() {
	m.mu.Lock()
	subs := make([]func(), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// Initialize restores a persisted session on startup. A stored access
// token is verified against the backend; verification failure triggers
// one silent refresh, and refresh failure clears everything. Initialize
// never returns an error: it always settles the state machine to
// Authenticated or Unauthenticated.
func (m *Manager) Initialize(ctx context.Context) {
	creds, err := m.store.Load()
	if err != nil {
		m.log.Warn().Err(err).Msg("load persisted credentials")
	}
	if creds.Empty() || creds.AccessToken == "" {
		m.settle(StateUnauthenticated, nil, "", "", "")
		return
	}

	if err := m.backend.VerifyToken(ctx, creds.AccessToken); err == nil {
		m.resume(ctx, creds)
		return
	}

	// Stale access token. Try the refresh token once before giving up.
	if creds.RefreshToken != "" {
		access, err := m.backend.RefreshAccess(ctx, creds.RefreshToken)
		if err == nil {
			creds.AccessToken = access
			m.resume(ctx, creds)
			return
		}
		m.log.Info().Err(err).Msg("silent refresh failed, clearing session")
	}

	m.clearPersisted()
	m.settle(StateUnauthenticated, nil, "", "", "")
}

// resume adopts verified credentials, fetching the profile if the store
// did not have one.
func (m *Manager) resume(ctx context.Context, creds Credentials) {
	user := creds.User
	if user == nil {
		m.mu.Lock()
		m.access = creds.AccessToken
		m.refresh = creds.RefreshToken
		m.mu.Unlock()

		fetched, err := m.backend.CurrentUser(ctx)
		if err != nil {
			m.log.Warn().Err(err).Msg("fetch profile during session restore")
			m.clearPersisted()
			m.settle(StateUnauthenticated, nil, "", "", "")
			return
		}
		user = &fetched
	}

	m.persist(Credentials{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		User:         user,
	})
	m.settle(StateAuthenticated, user, creds.AccessToken, creds.RefreshToken, "")
}

// Login exchanges credentials for a token pair and fetches the profile.
// Tokens and user commit together: a failed profile fetch rolls the
// freshly minted tokens back rather than leaving a half-open session.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	m.setLoading(true)
	defer m.setLoading(false)

	pair, err := m.backend.CreateToken(ctx, email, password)
	if err != nil {
		msg := loginMessage(err)
		m.settle(StateUnauthenticated, nil, "", "", msg)
		return Result{OK: false, Message: msg}
	}

	// The profile fetch rides the new access token.
	m.mu.Lock()
	m.access = pair.Access
	m.refresh = pair.Refresh
	m.mu.Unlock()

	user, err := m.backend.CurrentUser(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("fetch profile after login")
		msg := loginMessage(err)
		m.clearPersisted()
		m.settle(StateUnauthenticated, nil, "", "", msg)
		return Result{OK: false, Message: msg}
	}

	m.persist(Credentials{AccessToken: pair.Access, RefreshToken: pair.Refresh, User: &user})
	m.settle(StateAuthenticated, &user, pair.Access, pair.Refresh, "")
	m.log.Info().Str("email", user.Email).Msg("logged in")
	return Result{OK: true}
}

// Register creates an account. It never authenticates the caller;
// logging in is a separate step.
func (m *Manager) Register(ctx context.Context, in RegisterInput) Result {
	m.setLoading(true)
	defer m.setLoading(false)

	user, err := m.backend.Register(ctx, in)
	if err != nil {
		msg := registerMessage(err)
		m.setErr(msg)
		return Result{OK: false, Message: msg}
	}

	m.setErr("")
	m.log.Info().Str("email", user.Email).Msg("account registered")
	return Result{OK: true, Message: "Account created. You can now log in."}
}

// Logout clears the session locally. The backend keeps no server-side
// session to tear down; the refresh token simply ages out.
func (m *Manager) Logout() {
	m.clearPersisted()
	m.settle(StateUnauthenticated, nil, "", "", "")
	m.log.Info().Msg("logged out")
}

// ChangePassword changes the authenticated user's password.
func (m *Manager) ChangePassword(ctx context.Context, current, newPassword string) Result {
	m.setLoading(true)
	defer m.setLoading(false)

	if err := m.backend.SetPassword(ctx, current, newPassword); err != nil {
		msg := passwordMessage(err)
		m.setErr(msg)
		return Result{OK: false, Message: msg}
	}
	m.setErr("")
	return Result{OK: true, Message: "Password updated."}
}

// RequestPasswordReset asks the backend to send a reset email.
func (m *Manager) RequestPasswordReset(ctx context.Context, email string) Result {
	m.setLoading(true)
	defer m.setLoading(false)

	if err := m.backend.ResetPassword(ctx, email); err != nil {
		msg := operationMessage(err)
		m.setErr(msg)
		return Result{OK: false, Message: msg}
	}
	m.setErr("")
	return Result{OK: true, Message: "Reset email sent if the account exists."}
}

// UpdateUser merges a partial profile edit into the cached user and
// persists the merged record. It does not call the backend.
func (m *Manager) UpdateUser(patch ProfileUpdate) {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return
	}
	if patch.FirstName != nil {
		m.user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		m.user.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		m.user.Phone = *patch.Phone
	}
	creds := Credentials{AccessToken: m.access, RefreshToken: m.refresh, User: m.user}
	m.mu.Unlock()

	m.persist(creds)
	m.publish()
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns a copy of the cached profile, or nil when
// unauthenticated.
func (m *Manager) CurrentUser() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Err returns the message of the last failed operation, if any.
func (m *Manager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Loading reports whether an operation is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// AccessToken implements the api client's credential source.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

// RefreshToken implements the api client's credential source.
func (m *Manager) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh
}

// StoreAccessToken adopts an access token rotated by the refresh
// protocol and writes it through to the credential store.
func (m *Manager) StoreAccessToken(token string) {
	m.mu.Lock()
	m.access = token
	creds := Credentials{AccessToken: m.access, RefreshToken: m.refresh, User: m.user}
	m.mu.Unlock()

	m.persist(creds)
	m.log.Debug().Msg("access token rotated")
}

// Invalidate tears the session down after an irrecoverable authorization
// failure. Called by the api client when the refresh protocol gives up.
func (m *Manager) Invalidate() {
	m.clearPersisted()
	m.settle(StateUnauthenticated, nil, "", "", "")
	m.log.Info().Msg("session invalidated")
}

// settle commits a full state transition and notifies subscribers.
// Tokens and user always change together here, never piecemeal.
func (m *Manager) settle(state State, user *User, access, refresh, errMsg string) {
	m.mu.Lock()
	m.state = state
	m.user = user
	m.access = access
	m.refresh = refresh
	m.lastErr = errMsg
	m.mu.Unlock()
	m.publish()
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
	m.publish()
}

func (m *Manager) setErr(msg string) {
	m.mu.Lock()
	m.lastErr = msg
	m.mu.Unlock()
	m.publish()
}

func (m *Manager) persist(creds Credentials) {
	if err := m.store.Save(creds); err != nil {
		m.log.Warn().Err(err).Msg("persist credentials")
	}
}

func (m *Manager) clearPersisted() {
	if err := m.store.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("clear persisted credentials")
	}
}

// loginMessage maps a login failure to its user-facing message. Backend
// detail wins, then field-level messages, then generic fallbacks. Raw
// transport errors never leak to the user.
func loginMessage(err error) string {
	var e *apierr.Error
	if !errors.As(err, &e) {
		return msgConnectionError
	}
	if e.Detail != "" {
		return e.Detail
	}
	if msg := e.Field("non_field_errors"); msg != "" {
		return msg
	}
	if e.StatusCode == http.StatusUnauthorized {
		return msgBadCredentials
	}
	return msgGenericFailure
}

// registerMessage surfaces the first relevant validation message per
// known field.
func registerMessage(err error) string {
	var e *apierr.Error
	if !errors.As(err, &e) {
		return msgConnectionError
	}
	if msg := e.Field("email"); msg != "" {
		return "Email: " + msg
	}
	if msg := e.Field("password"); msg != "" {
		return "Password: " + msg
	}
	if msg := e.Field("non_field_errors"); msg != "" {
		return msg
	}
	if e.Detail != "" {
		return e.Detail
	}
	return msgGenericFailure
}

func passwordMessage(err error) string {
	var e *apierr.Error
	if !errors.As(err, &e) {
		return msgConnectionError
	}
	if msg := e.Field("current_password"); msg != "" {
		return "Current password is incorrect"
	}
	if msg := e.Field("new_password"); msg != "" {
		return "New password: " + msg
	}
	if e.Detail != "" {
		return e.Detail
	}
	return msgGenericFailure
}

func operationMessage(err error) string {
	var e *apierr.Error
	if !errors.As(err, &e) {
		return msgConnectionError
	}
	if e.Detail != "" {
		return e.Detail
	}
	return msgGenericFailure
}
