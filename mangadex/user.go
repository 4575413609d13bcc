package mangadex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mangasan-dev/mangasan/query"
)

// UserAttributes is the typed attribute block of a user entity.
type UserAttributes struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Version  int      `json:"version"`
}

// User is a MangaDex account.
type User struct {
	ID            string
	Attributes    UserAttributes
	Relationships Relationships

	client *Client
}

func (u *User) String() string {
	return u.Attributes.Username
}

func buildUser(c *Client, e entity) (*User, error) {
	u := &User{ID: e.ID, client: c, Relationships: newRelationships(e.Relationships)}
	if err := json.Unmarshal(e.Attributes, &u.Attributes); err != nil {
		return nil, fmt.Errorf("decode user attributes: %w", err)
	}
	return u, nil
}

// UserListOptions are the supported filters of the user listing endpoint.
type UserListOptions struct {
	Limit    int      `url:"limit,omitempty"`
	Offset   int      `url:"offset,omitempty"`
	IDs      []string `url:"ids,omitempty,brackets"`
	Username string   `url:"username,omitempty"`
	Order    Order    `url:"order,omitempty"`
}

// ListUsers performs a filtered user search. Requires authentication.
func (c *Client) ListUsers(ctx context.Context, opts UserListOptions) (Collection[*User], error) {
	if err := c.requireAuth(); err != nil {
		return Collection[*User]{}, err
	}

	if opts.Limit == 0 {
		opts.Limit = 100
	}
	opts.Limit, opts.Offset = clampLimits(opts.Limit, opts.Offset, MaxLimit)

	encoded, err := query.FromStruct(opts)
	if err != nil {
		return Collection[*User]{}, err
	}

	var payload listResponse
	route := NewRoute(http.MethodGet, "/user")
	if err := c.requestJSON(ctx, route, requestOptions{query: encoded}, &payload); err != nil {
		return Collection[*User]{}, err
	}

	return buildCollection(c, payload, buildUser)
}

// GetUser fetches one user by UUID.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	var payload singleResponse
	route := NewRoute(http.MethodGet, "/user/%s", userID)
	if err := c.requestJSON(ctx, route, requestOptions{}, &payload); err != nil {
		return nil, err
	}
	return buildUser(c, payload.Data)
}

// Me fetches the logged-in user's own account.
func (c *Client) Me(ctx context.Context) (*User, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var payload singleResponse
	route := NewRoute(http.MethodGet, "/user/me")
	if err := c.requestJSON(ctx, route, requestOptions{}, &payload); err != nil {
		return nil, err
	}
	return buildUser(c, payload.Data)
}

// DeleteUser starts deletion of a user account. The deletion has to be
// approved out of band before it takes effect.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	route := NewRoute(http.MethodDelete, "/user/%s", userID)
	return c.requestJSON(ctx, route, requestOptions{}, nil)
}

// ApproveUserDeletion confirms a pending account deletion with the code
// mailed to the account owner.
func (c *Client) ApproveUserDeletion(ctx context.Context, approvalCode string) error {
	route := NewRoute(http.MethodPost, "/user/delete/%s", approvalCode)
	return c.requestJSON(ctx, route, requestOptions{}, nil)
}

// UpdatePassword changes the logged-in user's password.
func (c *Client) UpdatePassword(ctx context.Context, oldPassword, newPassword string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	body := map[string]any{
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	}
	route := NewRoute(http.MethodPost, "/user/password")
	return c.requestJSON(ctx, route, requestOptions{body: body}, nil)
}

// UpdateEmail changes the logged-in user's email address.
func (c *Client) UpdateEmail(ctx context.Context, email string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	body := map[string]any{"email": email}
	route := NewRoute(http.MethodPost, "/user/email")
	return c.requestJSON(ctx, route, requestOptions{body: body}, nil)
}
