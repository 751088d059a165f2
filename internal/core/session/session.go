// Package session owns the authentication session lifecycle: the token
// pair, the current user, and the state machine that gates the UI.
package session

import "context"

// State represents the lifecycle state of the session.
type State string

const (
	StateLoading         State = "loading"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// User is the authenticated account profile as served by the backend.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// FullName returns "First Last", falling back to the email when both
// name fields are empty.
func (u User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Email
	case u.LastName == "":
		return u.FirstName
	case u.FirstName == "":
		return u.LastName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// TokenPair is the access/refresh credential pair minted at login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Credentials is the durable slice of session state. Tokens and user are
// always written and cleared together.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// Empty reports whether no session is persisted.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == "" && c.User == nil
}

// CredentialStore persists credentials to durable local storage.
// Writes are synchronous with in-memory state changes; last write wins.
type CredentialStore interface {
	Load() (Credentials, error)
	Save(Credentials) error
	Clear() error
}

// RegisterInput is the new-account payload.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Phone           string
}

// Result is the outcome shape of every public manager operation.
// Public operations never return raw errors; failures carry a
// human-readable message instead.
type Result struct {
	OK      bool
	Message string
}

// Backend is the slice of the REST API the manager consumes.
// Implemented by the api client.
type Backend interface {
	// CreateToken exchanges credentials for a token pair.
	CreateToken(ctx context.Context, email, password string) (TokenPair, error)
	// VerifyToken checks whether an access token is still valid.
	VerifyToken(ctx context.Context, token string) error
	// RefreshAccess mints a new access token from a refresh token.
	RefreshAccess(ctx context.Context, refresh string) (string, error)
	// CurrentUser fetches the profile of the authenticated user.
	CurrentUser(ctx context.Context) (User, error)
	// Register creates a new account. Does not authenticate.
	Register(ctx context.Context, in RegisterInput) (User, error)
	// SetPassword changes the password of the authenticated user.
	SetPassword(ctx context.Context, current, newPassword string) error
	// ResetPassword requests a password-reset email.
	ResetPassword(ctx context.Context, email string) error
}
