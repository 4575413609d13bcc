package mangadex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mangasan-dev/mangasan/log"
)

// Route describes an HTTP verb and an API endpoint path. Path parameters are
// substituted with url-escaped values before the request is dispatched.
type Route struct {
	Verb string
	Path string
}

// NewRoute formats a route path with the given parameters.
func NewRoute(verb, path string, params ...string) Route {
	escaped := make([]any, len(params))
	for i, p := range params {
		escaped[i] = url.PathEscape(p)
	}
	return Route{Verb: verb, Path: fmt.Sprintf(path, escaped...)}
}

// requestOptions carries the optional parts of a dispatched request.
type requestOptions struct {
	query   string
	body    any
	rawBody []byte
	header  http.Header
}

// request performs one HTTP call against the API base, attaching the bearer
// token for authenticated clients and the fixed User-Agent for everyone.
// Non-2xx statuses map to the error taxonomy; the response body is returned
// raw for the caller to decode. There is no automatic retry.
func (c *Client) request(ctx context.Context, route Route, opts requestOptions) ([]byte, error) {
	return c.dispatch(ctx, c.baseURL, route, opts)
}

func (c *Client) dispatch(ctx context.Context, base string, route Route, opts requestOptions) ([]byte, error) {
	target := base + route.Path
	if opts.query != "" {
		target += "?" + opts.query
	}

	var body io.Reader
	contentType := ""
	switch {
	case opts.rawBody != nil:
		body = bytes.NewReader(opts.rawBody)
	case opts.body != nil:
		encoded, err := json.Marshal(opts.body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, route.Verb, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for name, values := range opts.header {
		for _, v := range values {
			req.Header.Set(name, v)
		}
	}

	if c.authed {
		token, err := c.ensureToken(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.Debugf("%s %s", route.Verb, target)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mangadex api request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Debugf("request to %s failed with status %d", target, resp.StatusCode)
		return nil, statusError(resp.StatusCode, string(data))
	}

	return data, nil
}

// requestJSON dispatches a request and decodes the JSON response into out.
// Passing a nil out discards the response body. Use request directly for
// text endpoints.
func (c *Client) requestJSON(ctx context.Context, route Route, opts requestOptions, out any) error {
	data, err := c.request(ctx, route, opts)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Ping checks whether the API is reachable and healthy. The endpoint answers
// with a bare text body rather than JSON.
func (c *Client) Ping(ctx context.Context) error {
	data, err := c.request(ctx, NewRoute(http.MethodGet, "/ping"), requestOptions{})
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(string(data)), "pong") {
		return fmt.Errorf("unexpected ping response %q", string(data))
	}
	return nil
}
