package mangadex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mangasan-dev/mangasan/query"
	"github.com/samber/mo"
)

// ChapterAttributes is the typed attribute block of a chapter entity.
type ChapterAttributes struct {
	Title              *string   `json:"title"`
	Volume             *string   `json:"volume"`
	Chapter            *string   `json:"chapter"`
	Pages              int       `json:"pages"`
	TranslatedLanguage string    `json:"translatedLanguage"`
	Uploader           *string   `json:"uploader"`
	ExternalURL        *string   `json:"externalUrl"`
	Version            int       `json:"version"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	PublishAt          time.Time `json:"publishAt"`
	ReadableAt         time.Time `json:"readableAt"`
}

// Chapter is an immutable snapshot of one chapter response.
type Chapter struct {
	ID            string
	Attributes    ChapterAttributes
	Relationships Relationships

	client *Client

	manga mo.Option[*Manga]
}

func (ch *Chapter) String() string {
	if ch.Attributes.Title != nil && *ch.Attributes.Title != "" {
		return *ch.Attributes.Title
	}
	if ch.Attributes.Chapter != nil {
		return "Chapter " + *ch.Attributes.Chapter
	}
	return "Oneshot"
}

func buildChapter(c *Client, e entity) (*Chapter, error) {
	ch := &Chapter{ID: e.ID, client: c, Relationships: newRelationships(e.Relationships)}
	if err := json.Unmarshal(e.Attributes, &ch.Attributes); err != nil {
		return nil, fmt.Errorf("decode chapter attributes: %w", err)
	}
	return ch, nil
}

// Manga resolves the parent manga of this chapter. A None result means the
// manga relationship was absent from the payload, which is ambiguous between
// "none exist" and "not requested via includes[]".
func (ch *Chapter) Manga(ctx context.Context) (mo.Option[*Manga], error) {
	if cached, ok := ch.manga.Get(); ok {
		return mo.Some(cached), nil
	}

	entry, ok := ch.Relationships.First("manga").Get()
	if !ok {
		return mo.None[*Manga](), nil
	}

	var parent *Manga
	var err error
	if entry.Resolved() {
		parent, err = buildManga(ch.client, entity{ID: entry.ID, Attributes: entry.Attributes})
	} else {
		parent, err = ch.client.GetManga(ctx, entry.ID)
	}
	if err != nil {
		return mo.None[*Manga](), err
	}

	ch.manga = mo.Some(parent)
	return mo.Some(parent), nil
}

// ScanlationGroups resolves the groups credited on this chapter.
func (ch *Chapter) ScanlationGroups(ctx context.Context) ([]*ScanlatorGroup, error) {
	var groups []*ScanlatorGroup
	for _, entry := range ch.Relationships.OfType("scanlation_group") {
		if entry.Resolved() {
			group, err := buildGroup(ch.client, entity{ID: entry.ID, Attributes: entry.Attributes})
			if err != nil {
				return nil, err
			}
			groups = append(groups, group)
			continue
		}

		group, err := ch.client.GetScanlationGroup(ctx, entry.ID)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// ChapterListOptions are the supported filters of the chapter listing endpoint.
type ChapterListOptions struct {
	Limit              int       `url:"limit,omitempty"`
	Offset             int       `url:"offset,omitempty"`
	IDs                []string  `url:"ids,omitempty,brackets"`
	Title              string    `url:"title,omitempty"`
	Groups             []string  `url:"groups,omitempty,brackets"`
	Uploader           string    `url:"uploader,omitempty"`
	Manga              string    `url:"manga,omitempty"`
	Volume             []string  `url:"volume,omitempty,brackets"`
	Chapter            []string  `url:"chapter,omitempty,brackets"`
	TranslatedLanguage []string  `url:"translatedLanguage,omitempty,brackets"`
	ContentRating      []string  `url:"contentRating,omitempty,brackets"`
	CreatedAtSince     Timestamp `url:"createdAtSince,omitempty"`
	UpdatedAtSince     Timestamp `url:"updatedAtSince,omitempty"`
	PublishAtSince     Timestamp `url:"publishAtSince,omitempty"`
	Order              Order     `url:"order,omitempty"`
	Includes           []string  `url:"includes,omitempty,brackets"`
}

// ListChapters performs a filtered chapter search.
func (c *Client) ListChapters(ctx context.Context, opts ChapterListOptions) (Collection[*Chapter], error) {
	if opts.Limit == 0 {
		opts.Limit = 100
	}
	opts.Limit, opts.Offset = clampLimits(opts.Limit, opts.Offset, MaxLimit)

	encoded, err := query.FromStruct(opts)
	if err != nil {
		return Collection[*Chapter]{}, err
	}

	var payload listResponse
	route := NewRoute(http.MethodGet, "/chapter")
	if err := c.requestJSON(ctx, route, requestOptions{query: encoded}, &payload); err != nil {
		return Collection[*Chapter]{}, err
	}

	return buildCollection(c, payload, buildChapter)
}

// GetChapter fetches one chapter by UUID.
func (c *Client) GetChapter(ctx context.Context, chapterID string, includes ...string) (*Chapter, error) {
	q := query.New()
	if len(includes) > 0 {
		q.Set("includes", includes)
	}

	var payload singleResponse
	route := NewRoute(http.MethodGet, "/chapter/%s", chapterID)
	if err := c.requestJSON(ctx, route, requestOptions{query: q.Encode()}, &payload); err != nil {
		return nil, err
	}

	return buildChapter(c, payload.Data)
}

// UpdateChapterOptions is the tri-state request body of a chapter update.
type UpdateChapterOptions struct {
	Version            int
	Title              query.Tristate[string]
	Volume             query.Tristate[string]
	Chapter            query.Tristate[string]
	TranslatedLanguage query.Tristate[string]
	Groups             query.Tristate[[]string]
}

func (o UpdateChapterOptions) body() map[string]any {
	body := map[string]any{"version": o.Version}
	o.Title.Apply(body, "title")
	o.Volume.Apply(body, "volume")
	o.Chapter.Apply(body, "chapter")
	o.TranslatedLanguage.Apply(body, "translatedLanguage")
	o.Groups.Apply(body, "groups")
	return body
}

// UpdateChapter applies a partial update to a chapter.
func (c *Client) UpdateChapter(ctx context.Context, chapterID string, opts UpdateChapterOptions) (*Chapter, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var payload singleResponse
	route := NewRoute(http.MethodPut, "/chapter/%s", chapterID)
	if err := c.requestJSON(ctx, route, requestOptions{body: opts.body()}, &payload); err != nil {
		return nil, err
	}

	return buildChapter(c, payload.Data)
}

// DeleteChapter removes a chapter.
func (c *Client) DeleteChapter(ctx context.Context, chapterID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	route := NewRoute(http.MethodDelete, "/chapter/%s", chapterID)
	return c.requestJSON(ctx, route, requestOptions{}, nil)
}

// FeedOptions are the supported filters of chapter feed endpoints.
type FeedOptions struct {
	Limit              int       `url:"limit,omitempty"`
	Offset             int       `url:"offset,omitempty"`
	TranslatedLanguage []string  `url:"translatedLanguage,omitempty,brackets"`
	CreatedAtSince     Timestamp `url:"createdAtSince,omitempty"`
	UpdatedAtSince     Timestamp `url:"updatedAtSince,omitempty"`
	PublishAtSince     Timestamp `url:"publishAtSince,omitempty"`
	Order              Order     `url:"order,omitempty"`
	Includes           []string  `url:"includes,omitempty,brackets"`
}

// chapterFeed is the shared implementation of the chapter feed endpoints.
func (c *Client) chapterFeed(ctx context.Context, route Route, opts FeedOptions) (Collection[*Chapter], error) {
	if opts.Limit == 0 {
		opts.Limit = 100
	}
	opts.Limit, opts.Offset = clampLimits(opts.Limit, opts.Offset, MaxLimit)

	encoded, err := query.FromStruct(opts)
	if err != nil {
		return Collection[*Chapter]{}, err
	}

	var payload listResponse
	if err := c.requestJSON(ctx, route, requestOptions{query: encoded}, &payload); err != nil {
		return Collection[*Chapter]{}, err
	}

	return buildCollection(c, payload, buildChapter)
}

// GetMyFeed retrieves the chapter feed of the manga followed by the
// logged-in user.
func (c *Client) GetMyFeed(ctx context.Context, opts FeedOptions) (Collection[*Chapter], error) {
	if err := c.requireAuth(); err != nil {
		return Collection[*Chapter]{}, err
	}
	route := NewRoute(http.MethodGet, "/user/follows/manga/feed")
	return c.chapterFeed(ctx, route, opts)
}
