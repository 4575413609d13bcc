package mangadex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mangasan-dev/mangasan/query"
)

// AuthorAttributes is the typed attribute block of an author entity. Artists
// share the same shape; MangaDex serves both through the author resource.
type AuthorAttributes struct {
	Name      string          `json:"name"`
	ImageURL  *string         `json:"imageUrl"`
	Biography LocalizedString `json:"biography"`
	Twitter   *string         `json:"twitter"`
	Pixiv     *string         `json:"pixiv"`
	MelonBook *string         `json:"melonBook"`
	FanBox    *string         `json:"fanBox"`
	Booth     *string         `json:"booth"`
	NicoVideo *string         `json:"nicoVideo"`
	Skeb      *string         `json:"skeb"`
	Fantia    *string         `json:"fantia"`
	Tumblr    *string         `json:"tumblr"`
	Youtube   *string         `json:"youtube"`
	Weibo     *string         `json:"weibo"`
	Naver     *string         `json:"naver"`
	Website   *string         `json:"website"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Author is a person credited for writing a manga.
type Author struct {
	ID            string
	Attributes    AuthorAttributes
	Relationships Relationships

	client *Client
}

func (a *Author) String() string {
	return a.Attributes.Name
}

// Artist is a person credited for drawing a manga. The API models artists as
// authors under a different relationship type, so the types stay distinct
// even though the payload is identical.
type Artist struct {
	ID            string
	Attributes    AuthorAttributes
	Relationships Relationships

	client *Client
}

func (a *Artist) String() string {
	return a.Attributes.Name
}

func buildAuthor(c *Client, e entity) (*Author, error) {
	a := &Author{ID: e.ID, client: c, Relationships: newRelationships(e.Relationships)}
	if err := json.Unmarshal(e.Attributes, &a.Attributes); err != nil {
		return nil, fmt.Errorf("decode author attributes: %w", err)
	}
	return a, nil
}

func buildArtist(c *Client, e entity) (*Artist, error) {
	a := &Artist{ID: e.ID, client: c, Relationships: newRelationships(e.Relationships)}
	if err := json.Unmarshal(e.Attributes, &a.Attributes); err != nil {
		return nil, fmt.Errorf("decode artist attributes: %w", err)
	}
	return a, nil
}

// AuthorListOptions are the supported filters of the author listing endpoint.
type AuthorListOptions struct {
	Limit    int      `url:"limit,omitempty"`
	Offset   int      `url:"offset,omitempty"`
	IDs      []string `url:"ids,omitempty,brackets"`
	Name     string   `url:"name,omitempty"`
	Order    Order    `url:"order,omitempty"`
	Includes []string `url:"includes,omitempty,brackets"`
}

// ListAuthors performs a filtered author search.
func (c *Client) ListAuthors(ctx context.Context, opts AuthorListOptions) (Collection[*Author], error) {
	if opts.Limit == 0 {
		opts.Limit = 100
	}
	opts.Limit, opts.Offset = clampLimits(opts.Limit, opts.Offset, MaxLimit)

	encoded, err := query.FromStruct(opts)
	if err != nil {
		return Collection[*Author]{}, err
	}

	var payload listResponse
	route := NewRoute(http.MethodGet, "/author")
	if err := c.requestJSON(ctx, route, requestOptions{query: encoded}, &payload); err != nil {
		return Collection[*Author]{}, err
	}

	return buildCollection(c, payload, buildAuthor)
}

// GetAuthor fetches one author by UUID.
func (c *Client) GetAuthor(ctx context.Context, authorID string, includes ...string) (*Author, error) {
	q := query.New()
	if len(includes) > 0 {
		q.Set("includes", includes)
	}

	var payload singleResponse
	route := NewRoute(http.MethodGet, "/author/%s", authorID)
	if err := c.requestJSON(ctx, route, requestOptions{query: q.Encode()}, &payload); err != nil {
		return nil, err
	}

	return buildAuthor(c, payload.Data)
}

// GetArtist fetches one artist by UUID. There is no dedicated artist resource
// upstream, so this goes through the author endpoint.
func (c *Client) GetArtist(ctx context.Context, artistID string, includes ...string) (*Artist, error) {
	q := query.New()
	if len(includes) > 0 {
		q.Set("includes", includes)
	}

	var payload singleResponse
	route := NewRoute(http.MethodGet, "/author/%s", artistID)
	if err := c.requestJSON(ctx, route, requestOptions{query: q.Encode()}, &payload); err != nil {
		return nil, err
	}

	return buildArtist(c, payload.Data)
}

// CreateAuthorOptions is the request body of an author creation.
type CreateAuthorOptions struct {
	Name      string          `json:"name"`
	Biography LocalizedString `json:"biography,omitempty"`
}

// CreateAuthor creates a new author.
func (c *Client) CreateAuthor(ctx context.Context, opts CreateAuthorOptions) (*Author, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var payload singleResponse
	route := NewRoute(http.MethodPost, "/author")
	if err := c.requestJSON(ctx, route, requestOptions{body: opts}, &payload); err != nil {
		return nil, err
	}

	return buildAuthor(c, payload.Data)
}

// UpdateAuthorOptions is the tri-state request body of an author update.
type UpdateAuthorOptions struct {
	Version   int
	Name      query.Tristate[string]
	Biography query.Tristate[LocalizedString]
	Twitter   query.Tristate[string]
	Pixiv     query.Tristate[string]
	Website   query.Tristate[string]
}

func (o UpdateAuthorOptions) body() map[string]any {
	body := map[string]any{"version": o.Version}
	o.Name.Apply(body, "name")
	o.Biography.Apply(body, "biography")
	o.Twitter.Apply(body, "twitter")
	o.Pixiv.Apply(body, "pixiv")
	o.Website.Apply(body, "website")
	return body
}

// UpdateAuthor applies a partial update to an author.
func (c *Client) UpdateAuthor(ctx context.Context, authorID string, opts UpdateAuthorOptions) (*Author, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var payload singleResponse
	route := NewRoute(http.MethodPut, "/author/%s", authorID)
	if err := c.requestJSON(ctx, route, requestOptions{body: opts.body()}, &payload); err != nil {
		return nil, err
	}

	return buildAuthor(c, payload.Data)
}

// DeleteAuthor removes an author.
func (c *Client) DeleteAuthor(ctx context.Context, authorID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	route := NewRoute(http.MethodDelete, "/author/%s", authorID)
	return c.requestJSON(ctx, route, requestOptions{}, nil)
}
