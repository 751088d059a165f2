// Package api is the REST client for the gym backend. It owns request
// plumbing, bearer credential attachment, and the refresh-once-and-retry
// protocol for expired access tokens.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/javiercm/gymdesk/internal/core/apierr"
)

// CredentialSource supplies tokens to the transport and receives token
// updates from the refresh protocol. Implemented by the session manager,
// which stays the sole writer of session state.
type CredentialSource interface {
	AccessToken() string
	RefreshToken() string
	// StoreAccessToken replaces the access token after a successful refresh.
	StoreAccessToken(token string)
	// Invalidate clears the whole session after an unrecoverable
	// authorization failure.
	Invalidate()
}

// Options configures a Client.
type Options struct {
	BaseURL    string        // backend root, e.g. http://localhost:8000
	APIPrefix  string        // resource prefix, e.g. /api/v1
	AuthScheme string        // Authorization prefix the backend expects: Bearer or JWT
	Timeout    time.Duration // per-request timeout
	Logger     zerolog.Logger
}

// Client is the REST transport. Safe for concurrent use; concurrent
// refresh attempts are coalesced so at most one refresh call is in
// flight at a time.
type Client struct {
	baseURL string
	prefix  string
	scheme  string
	http    *http.Client
	log     zerolog.Logger

	credsMu sync.RWMutex
	creds   CredentialSource

	// refreshMu serializes the refresh protocol. Waiters that arrive
	// while a refresh is in flight block here and then observe the
	// already-rotated token instead of issuing their own refresh.
	refreshMu sync.Mutex
}

// New creates a client. Credentials are wired separately via
// SetCredentials because the session manager is constructed after the
// client it depends on.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		prefix:  opts.APIPrefix,
		scheme:  opts.AuthScheme,
		http:    &http.Client{Timeout: timeout},
		log:     opts.Logger,
	}
}

// SetCredentials attaches the credential source. Until one is attached,
// requests go out unauthenticated and 401s are returned as-is.
func (c *Client) SetCredentials(src CredentialSource) {
	c.credsMu.Lock()
	c.creds = src
	c.credsMu.Unlock()
}

func (c *Client) credentials() CredentialSource {
	c.credsMu.RLock()
	defer c.credsMu.RUnlock()
	return c.creds
}

// resource returns the path for a resource collection under the API
// prefix, e.g. resource("socios") -> "/api/v1/socios/".
func (c *Client) resource(name string) string {
	return c.prefix + "/" + name + "/"
}

// get/post/put/patch/del issue authenticated requests with the refresh
// protocol applied. Auth endpoints bypass these and use call directly.

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) del(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// do runs one authenticated request with the refresh-once-and-retry
// protocol:
//
//  1. Attach the current access token and send.
//  2. On a 401, consult the refresh token. Absent -> invalidate the
//     session, return ErrSessionExpired.
//  3. Present -> refresh (coalesced across concurrent callers) and
//     re-issue the original request exactly once with the new token.
//  4. A second 401 means the refreshed token was rejected too:
//     invalidate and return ErrSessionExpired.
//
// The caller only ever observes the retried response or a terminal
// error, never the stale-token 401.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	creds := c.credentials()

	token := ""
	if creds != nil {
		token = creds.AccessToken()
	}

	err = c.send(ctx, method, path, query, payload, token, out)
	if creds == nil || token == "" || !apierr.IsUnauthorized(err) {
		return err
	}

	// First authorization failure for this request: run the refresh
	// protocol, then retry exactly once.
	newToken, refreshErr := c.recoverAccessToken(ctx, token)
	if refreshErr != nil {
		return refreshErr
	}

	err = c.send(ctx, method, path, query, payload, newToken, out)
	if apierr.IsUnauthorized(err) {
		c.log.Warn().Str("path", path).Msg("refreshed token rejected, invalidating session")
		creds.Invalidate()
		return apierr.ErrSessionExpired
	}
	return err
}

// recoverAccessToken exchanges the refresh token for a new access token.
// Concurrent callers coalesce: the first one performs the refresh while
// the rest block on refreshMu and then pick up the rotated token by
// observing that the access token no longer matches their stale one.
func (c *Client) recoverAccessToken(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	creds := c.credentials()
	if creds == nil {
		return "", apierr.ErrSessionExpired
	}

	if current := creds.AccessToken(); current != "" && current != stale {
		return current, nil
	}

	refresh := creds.RefreshToken()
	if refresh == "" {
		c.log.Warn().Msg("no refresh token available, invalidating session")
		creds.Invalidate()
		return "", apierr.ErrSessionExpired
	}

	access, err := c.RefreshAccess(ctx, refresh)
	if err != nil {
		c.log.Warn().Err(err).Msg("token refresh failed, invalidating session")
		creds.Invalidate()
		return "", apierr.ErrSessionExpired
	}

	creds.StoreAccessToken(access)
	return access, nil
}

// call issues a request without the refresh protocol. Used by the auth
// endpoints themselves, which must never recurse into a refresh.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	return c.send(ctx, method, path, nil, payload, "", out)
}

// send performs a single HTTP exchange. Non-2xx responses decode into
// *apierr.Error; transport failures come back wrapped.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, token string, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", c.scheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Debug().Err(err).Str("path", path).Msg("close response body")
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %w", method, path, apierr.Decode(resp.StatusCode, respBody))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}

	return nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return json.Marshal(body)
}
