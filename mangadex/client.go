package mangadex

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/mangasan-dev/mangasan/constant"
	"github.com/mangasan-dev/mangasan/network"
)

// Client is a typed MangaDex API client. The zero value is not usable;
// construct one with New, NewWithLogin or NewWithRefreshToken.
//
// A single Client is safe for concurrent use: the token lifecycle state is
// guarded by a mutex and swapped wholesale on every mint or refresh.
type Client struct {
	http      *http.Client
	baseURL   string
	authURL   string
	userAgent string

	username    string
	password    string
	seedRefresh string
	authed      bool

	oauthID     string
	oauthSecret string

	mu    sync.Mutex
	state authState
}

// New returns an unauthenticated client. Such a client never attaches an
// Authorization header and fails authenticated operations client-side.
func New() *Client {
	return &Client{
		http:      network.Client,
		baseURL:   constant.APIBaseURL,
		authURL:   constant.AuthBaseURL,
		userAgent: constant.UserAgent,
	}
}

// NewWithLogin returns a client that authenticates with a username (or email)
// and password pair on first use.
func NewWithLogin(username, password string) (*Client, error) {
	if username == "" || password == "" {
		return nil, errors.New("mangadex: both a username and a password are required")
	}

	c := New()
	c.username = username
	c.password = password
	c.authed = true
	return c, nil
}

// NewWithOAuth returns a client that authenticates through a registered
// personal OAuth2 client instead of the legacy session endpoints. Tokens are
// minted and refreshed against the dedicated auth host.
func NewWithOAuth(clientID, clientSecret, username, password string) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("mangadex: both a client ID and a client secret are required")
	}
	if username == "" || password == "" {
		return nil, errors.New("mangadex: both a username and a password are required")
	}

	c := New()
	c.oauthID = clientID
	c.oauthSecret = clientSecret
	c.username = username
	c.password = password
	c.authed = true
	return c, nil
}

// NewWithOAuthClient returns a client holding only an OAuth2 client
// registration, for flows that obtain tokens interactively through
// AuthenticateWithBrowser.
func NewWithOAuthClient(clientID, clientSecret string) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("mangadex: both a client ID and a client secret are required")
	}

	c := New()
	c.oauthID = clientID
	c.oauthSecret = clientSecret
	return c, nil
}

// NewWithRefreshToken returns a client seeded with a previously persisted
// refresh token. The first authenticated request exchanges it for a session.
func NewWithRefreshToken(refreshToken string) (*Client, error) {
	if refreshToken == "" {
		return nil, errors.New("mangadex: a refresh token is required")
	}

	c := New()
	c.seedRefresh = refreshToken
	c.authed = true
	return c, nil
}

// UseDevAPI redirects all requests to the MangaDex development environment.
func (c *Client) UseDevAPI() {
	c.baseURL = constant.APIDevBaseURL
	c.authURL = constant.AuthDevBaseURL
}

// SetBaseURL overrides the API base, primarily for tests.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

// SetHTTPClient overrides the underlying HTTP client, primarily for tests.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// Authenticated reports whether the client was constructed with credentials or
// a refresh token.
func (c *Client) Authenticated() bool {
	return c.authed
}

// RefreshToken exposes the current refresh token so callers can persist it
// between runs. Empty until the first successful login or exchange.
func (c *Client) RefreshToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.refresh
}

// requireAuth is the client-side precondition for endpoints that need a
// logged-in user. It performs no network call.
func (c *Client) requireAuth() error {
	if !c.authed {
		return ErrAuthenticationRequired
	}
	return nil
}

// Close logs the client out, invalidating the session server-side, and clears
// all token state. Unauthenticated clients close without a network call.
func (c *Client) Close(ctx context.Context) error {
	if !c.authed {
		return nil
	}
	return c.Logout(ctx)
}
