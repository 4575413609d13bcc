package mangadex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mangasan-dev/mangasan/query"
)

// ListVisibility controls who can see a custom list.
type ListVisibility string

const (
	ListPublic  ListVisibility = "public"
	ListPrivate ListVisibility = "private"
)

// CustomListAttributes is the typed attribute block of a custom list entity.
type CustomListAttributes struct {
	Name       string         `json:"name"`
	Visibility ListVisibility `json:"visibility"`
	Version    int            `json:"version"`
}

// CustomList is a user-curated collection of manga.
type CustomList struct {
	ID            string
	Attributes    CustomListAttributes
	Relationships Relationships

	client *Client
}

func (l *CustomList) String() string {
	return l.Attributes.Name
}

func buildCustomList(c *Client, e entity) (*CustomList, error) {
	l := &CustomList{ID: e.ID, client: c, Relationships: newRelationships(e.Relationships)}
	if err := json.Unmarshal(e.Attributes, &l.Attributes); err != nil {
		return nil, fmt.Errorf("decode custom list attributes: %w", err)
	}
	return l, nil
}

// MangaIDs returns the manga referenced by this list without fetching them.
func (l *CustomList) MangaIDs() []string {
	var ids []string
	for _, entry := range l.Relationships.OfType("manga") {
		ids = append(ids, entry.ID)
	}
	return ids
}

// CreateListOptions is the request body of a custom list creation.
type CreateListOptions struct {
	Name       string         `json:"name"`
	Visibility ListVisibility `json:"visibility,omitempty"`
	Manga      []string       `json:"manga,omitempty"`
}

// CreateCustomList creates a new custom list for the logged-in user.
func (c *Client) CreateCustomList(ctx context.Context, opts CreateListOptions) (*CustomList, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var payload singleResponse
	route := NewRoute(http.MethodPost, "/list")
	if err := c.requestJSON(ctx, route, requestOptions{body: opts}, &payload); err != nil {
		return nil, err
	}

	return buildCustomList(c, payload.Data)
}

// GetCustomList fetches one custom list by UUID.
func (c *Client) GetCustomList(ctx context.Context, listID string) (*CustomList, error) {
	var payload singleResponse
	route := NewRoute(http.MethodGet, "/list/%s", listID)
	if err := c.requestJSON(ctx, route, requestOptions{}, &payload); err != nil {
		return nil, err
	}
	return buildCustomList(c, payload.Data)
}

// UpdateListOptions is the tri-state request body of a custom list update.
// Version is mandatory; the API rejects updates without it.
type UpdateListOptions struct {
	Version    int
	Name       query.Tristate[string]
	Visibility query.Tristate[ListVisibility]
	Manga      query.Tristate[[]string]
}

func (o UpdateListOptions) body() map[string]any {
	body := map[string]any{"version": o.Version}
	o.Name.Apply(body, "name")
	o.Visibility.Apply(body, "visibility")
	o.Manga.Apply(body, "manga")
	return body
}

// UpdateCustomList applies a partial update to a custom list.
func (c *Client) UpdateCustomList(ctx context.Context, listID string, opts UpdateListOptions) (*CustomList, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var payload singleResponse
	route := NewRoute(http.MethodPut, "/list/%s", listID)
	if err := c.requestJSON(ctx, route, requestOptions{body: opts.body()}, &payload); err != nil {
		return nil, err
	}

	return buildCustomList(c, payload.Data)
}

// DeleteCustomList removes a custom list.
func (c *Client) DeleteCustomList(ctx context.Context, listID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	route := NewRoute(http.MethodDelete, "/list/%s", listID)
	return c.requestJSON(ctx, route, requestOptions{}, nil)
}

// AddMangaToList puts a manga on a custom list.
func (c *Client) AddMangaToList(ctx context.Context, mangaID, listID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	route := NewRoute(http.MethodPost, "/manga/%s/list/%s", mangaID, listID)
	return c.requestJSON(ctx, route, requestOptions{}, nil)
}

// RemoveMangaFromList takes a manga off a custom list.
func (c *Client) RemoveMangaFromList(ctx context.Context, mangaID, listID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	route := NewRoute(http.MethodDelete, "/manga/%s/list/%s", mangaID, listID)
	return c.requestJSON(ctx, route, requestOptions{}, nil)
}

// GetMyCustomLists retrieves the logged-in user's own lists, private ones
// included.
func (c *Client) GetMyCustomLists(ctx context.Context, limit, offset int) (Collection[*CustomList], error) {
	if err := c.requireAuth(); err != nil {
		return Collection[*CustomList]{}, err
	}

	if limit == 0 {
		limit = 100
	}
	limit, offset = clampLimits(limit, offset, MaxLimit)

	q := query.New().Set("limit", limit).Set("offset", offset)

	var payload listResponse
	route := NewRoute(http.MethodGet, "/user/list")
	if err := c.requestJSON(ctx, route, requestOptions{query: q.Encode()}, &payload); err != nil {
		return Collection[*CustomList]{}, err
	}

	return buildCollection(c, payload, buildCustomList)
}

// GetUserCustomLists retrieves another user's public lists.
func (c *Client) GetUserCustomLists(ctx context.Context, userID string, limit, offset int) (Collection[*CustomList], error) {
	if limit == 0 {
		limit = 100
	}
	limit, offset = clampLimits(limit, offset, MaxLimit)

	q := query.New().Set("limit", limit).Set("offset", offset)

	var payload listResponse
	route := NewRoute(http.MethodGet, "/user/%s/list", userID)
	if err := c.requestJSON(ctx, route, requestOptions{query: q.Encode()}, &payload); err != nil {
		return Collection[*CustomList]{}, err
	}

	return buildCollection(c, payload, buildCustomList)
}

// GetCustomListFeed retrieves the chapter feed of the manga on a list.
func (c *Client) GetCustomListFeed(ctx context.Context, listID string, opts FeedOptions) (Collection[*Chapter], error) {
	route := NewRoute(http.MethodGet, "/list/%s/feed", listID)
	return c.chapterFeed(ctx, route, opts)
}
