package mangadex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mangasan-dev/mangasan/log"
)

// staleWindow is how long a minted session token is reused before the client
// exchanges the refresh token for a new one.
const staleWindow = 15 * time.Minute

// authState is the complete token lifecycle record. Every mint and refresh
// replaces the whole value in a single assignment, never field by field.
type authState struct {
	session     string
	refresh     string
	lastRefresh time.Time
}

type tokenPayload struct {
	Session string `json:"session"`
	Refresh string `json:"refresh"`
}

type loginPayload struct {
	Result string       `json:"result"`
	Token  tokenPayload `json:"token"`
}

type checkPayload struct {
	Result          string `json:"result"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

// ensureToken returns a session token valid for the next request, minting,
// refreshing or reusing one as the lifecycle dictates. Callers must have
// verified the client is authenticated.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// First authenticated request: mint a session from credentials or from
	// the refresh token the client was seeded with.
	if c.state.session == "" {
		log.Debug("no session token yet, minting one")
		state, err := c.mint(ctx)
		if err != nil {
			return "", err
		}
		c.state = state
		return state.session, nil
	}

	if !c.state.lastRefresh.IsZero() {
		if time.Since(c.state.lastRefresh) > staleWindow {
			log.Debug("session token is older than the staleness window, refreshing")
			state, err := c.refresh(ctx)
			if err != nil {
				return "", err
			}
			c.state = state
			return state.session, nil
		}
		// Within the staleness window the token is reused without a network call.
		return c.state.session, nil
	}

	// A session of unknown age: validate it, falling back to a fresh mint.
	ok, err := c.checkToken(ctx)
	if err != nil {
		return "", err
	}
	if ok {
		log.Debug("session token is still valid, reusing it")
		return c.state.session, nil
	}

	state, err := c.mint(ctx)
	if err != nil {
		return "", err
	}
	c.state = state
	return state.session, nil
}

// mint performs the initial credential exchange. Clients seeded with only a
// refresh token exchange that instead of a username and password; clients
// registered as an OAuth2 personal client mint against the auth host.
func (c *Client) mint(ctx context.Context) (authState, error) {
	if c.username == "" && c.seedRefresh != "" {
		return c.exchangeRefresh(ctx, c.seedRefresh)
	}
	if c.oauthID != "" {
		return c.mintOAuth(ctx)
	}

	body := map[string]string{"username": c.username, "password": c.password}
	status, data, err := c.authPost(ctx, "/auth/login", body)
	if err != nil {
		return authState{}, err
	}

	var payload loginPayload
	decodeErr := json.Unmarshal(data, &payload)
	if status < 200 || status >= 300 || decodeErr != nil || payload.Result == "error" {
		return authState{}, &LoginError{APIError{Status: status, Body: string(data)}}
	}

	// Backdated slightly so the staleness window accounts for request latency.
	return authState{
		session:     payload.Token.Session,
		refresh:     payload.Token.Refresh,
		lastRefresh: time.Now().Add(-30 * time.Second),
	}, nil
}

// refresh exchanges the current refresh token for a new session. On failure
// the existing state is left untouched and the error carries the previous
// refresh timestamp.
func (c *Client) refresh(ctx context.Context) (authState, error) {
	return c.exchangeRefreshWithLast(ctx, c.state.refresh, c.state.lastRefresh)
}

func (c *Client) exchangeRefresh(ctx context.Context, refreshToken string) (authState, error) {
	return c.exchangeRefreshWithLast(ctx, refreshToken, time.Time{})
}

func (c *Client) exchangeRefreshWithLast(ctx context.Context, refreshToken string, last time.Time) (authState, error) {
	if c.oauthID != "" {
		return c.refreshOAuth(ctx, refreshToken, last)
	}

	body := map[string]string{"token": refreshToken}
	status, data, err := c.authPost(ctx, "/auth/refresh", body)
	if err != nil {
		return authState{}, err
	}

	var payload loginPayload
	decodeErr := json.Unmarshal(data, &payload)
	if status < 200 || status >= 300 || decodeErr != nil || payload.Result == "error" {
		log.Debugf("token refresh failed with status %d: %s", status, string(data))
		return authState{}, &RefreshError{
			APIError:    APIError{Status: status, Body: string(data)},
			LastRefresh: last,
		}
	}

	refreshed := payload.Token.Refresh
	if refreshed == "" {
		// The API may keep the refresh token stable across refreshes.
		refreshed = refreshToken
	}

	return authState{
		session:     payload.Token.Session,
		refresh:     refreshed,
		lastRefresh: time.Now(),
	}, nil
}

// checkToken validates the current session against the lightweight check
// endpoint. The caller holds the lifecycle mutex.
func (c *Client) checkToken(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/check", nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "Bearer "+c.state.session)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("token check: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read response body: %w", err)
	}

	var payload checkPayload
	decodeErr := json.Unmarshal(data, &payload)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || decodeErr != nil || payload.Result == "error" {
		return false, statusError(resp.StatusCode, string(data))
	}

	return payload.IsAuthenticated, nil
}

// Logout invalidates the session server-side and clears all token state.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.session != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/logout", nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Authorization", "Bearer "+c.state.session)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			data, _ := io.ReadAll(resp.Body)
			return statusError(resp.StatusCode, string(data))
		}
	}

	c.state = authState{}
	return nil
}

// authPost posts a JSON body to an auth endpoint without going through the
// dispatcher, since the dispatcher itself depends on a valid token.
func (c *Client) authPost(ctx context.Context, path string, body any) (int, []byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}

	return resp.StatusCode, data, nil
}
