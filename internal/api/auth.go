package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/javiercm/gymdesk/internal/core/session"
)

// Auth endpoints are djoser-shaped and live at the backend root, outside
// the resource prefix. The jwt endpoints must bypass the refresh
// protocol: a refresh triggered from inside a refresh would loop.
const (
	pathTokenCreate   = "/auth/jwt/create/"
	pathTokenVerify   = "/auth/jwt/verify/"
	pathTokenRefresh  = "/auth/jwt/refresh/"
	pathUsers         = "/auth/users/"
	pathUsersMe       = "/auth/users/me/"
	pathSetPassword   = "/auth/users/set_password/"
	pathResetPassword = "/auth/users/reset_password/"
)

var _ session.Backend = (*Client)(nil)

// CreateToken exchanges credentials for an access/refresh token pair.
func (c *Client) CreateToken(ctx context.Context, email, password string) (session.TokenPair, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var pair session.TokenPair
	if err := c.call(ctx, http.MethodPost, pathTokenCreate, body, &pair); err != nil {
		return session.TokenPair{}, fmt.Errorf("create token: %w", err)
	}
	return pair, nil
}

// VerifyToken checks an access token against the backend. A nil return
// means the token is still valid.
func (c *Client) VerifyToken(ctx context.Context, token string) error {
	body := struct {
		Token string `json:"token"`
	}{token}

	if err := c.call(ctx, http.MethodPost, pathTokenVerify, body, nil); err != nil {
		return fmt.Errorf("verify token: %w", err)
	}
	return nil
}

// RefreshAccess mints a new access token from a refresh token.
func (c *Client) RefreshAccess(ctx context.Context, refresh string) (string, error) {
	body := struct {
		Refresh string `json:"refresh"`
	}{refresh}

	var out struct {
		Access string `json:"access"`
	}
	if err := c.call(ctx, http.MethodPost, pathTokenRefresh, body, &out); err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	return out.Access, nil
}

// CurrentUser fetches the authenticated user's profile. Goes through the
// normal authed path, so an expired access token is recovered by the
// refresh protocol.
func (c *Client) CurrentUser(ctx context.Context) (session.User, error) {
	var user session.User
	if err := c.get(ctx, pathUsersMe, nil, &user); err != nil {
		return session.User{}, fmt.Errorf("fetch current user: %w", err)
	}
	return user, nil
}

// Register creates a new account. Registration does not authenticate;
// the caller logs in as a separate step.
func (c *Client) Register(ctx context.Context, in session.RegisterInput) (session.User, error) {
	body := struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RePassword string `json:"re_password"`
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		Phone      string `json:"phone"`
	}{in.Email, in.Password, in.ConfirmPassword, in.FirstName, in.LastName, in.Phone}

	var user session.User
	if err := c.call(ctx, http.MethodPost, pathUsers, body, &user); err != nil {
		return session.User{}, fmt.Errorf("register: %w", err)
	}
	return user, nil
}

// SetPassword changes the authenticated user's password.
func (c *Client) SetPassword(ctx context.Context, current, newPassword string) error {
	body := struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
		ReNewPassword   string `json:"re_new_password"`
	}{current, newPassword, newPassword}

	if err := c.post(ctx, pathSetPassword, body, nil); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

// ResetPassword requests a password-reset email for the given address.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{email}

	if err := c.call(ctx, http.MethodPost, pathResetPassword, body, nil); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	return nil
}
