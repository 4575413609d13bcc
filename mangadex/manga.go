package mangadex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/mangasan-dev/mangasan/constant"
	"github.com/mangasan-dev/mangasan/query"
	"github.com/samber/mo"
)

// LocalizedString is a language-code keyed set of translations for one value.
type LocalizedString map[string]string

// Get returns the translation for the given language code, falling back to
// English and then to any available translation.
func (ls LocalizedString) Get(lang string) string {
	if v, ok := ls[lang]; ok {
		return v
	}
	if v, ok := ls["en"]; ok {
		return v
	}
	for _, v := range ls {
		return v
	}
	return ""
}

// Order expresses the sort directive of a listing request. It encodes as
// order[field]=direction query pairs.
type Order map[string]string

// EncodeValues implements the go-querystring Encoder interface. Fields are
// emitted in sorted order so the encoding is deterministic.
func (o Order) EncodeValues(key string, v *url.Values) error {
	fields := make([]string, 0, len(o))
	for field := range o {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		v.Set(key+"["+field+"]", o[field])
	}
	return nil
}

// Timestamp encodes a point in time the way the API's *Since query
// parameters expect it. The zero value is omitted entirely.
type Timestamp time.Time

// EncodeValues implements the go-querystring Encoder interface.
func (t Timestamp) EncodeValues(key string, v *url.Values) error {
	if time.Time(t).IsZero() {
		return nil
	}
	v.Set(key, time.Time(t).Format("2006-01-02T15:04:05"))
	return nil
}

// Tag is one entry of the manga tag taxonomy.
type Tag struct {
	ID          string `json:"id"`
	Name        LocalizedString
	Group       string
	Description LocalizedString
}

// UnmarshalJSON flattens the entity envelope around a tag.
func (t *Tag) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         string `json:"id"`
		Attributes struct {
			Name        LocalizedString `json:"name"`
			Description LocalizedString `json:"description"`
			Group       string          `json:"group"`
		} `json:"attributes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.ID = raw.ID
	t.Name = raw.Attributes.Name
	t.Group = raw.Attributes.Group
	t.Description = raw.Attributes.Description
	return nil
}

// MangaAttributes is the typed attribute block of a manga entity. Optionality
// is explicit: fields the API may null are pointers.
type MangaAttributes struct {
	Title                  LocalizedString   `json:"title"`
	AltTitles              []LocalizedString `json:"altTitles"`
	Description            LocalizedString   `json:"description"`
	IsLocked               bool              `json:"isLocked"`
	Links                  map[string]string `json:"links"`
	OriginalLanguage       string            `json:"originalLanguage"`
	LastVolume             *string           `json:"lastVolume"`
	LastChapter            *string           `json:"lastChapter"`
	PublicationDemographic *string           `json:"publicationDemographic"`
	Status                 string            `json:"status"`
	Year                   *int              `json:"year"`
	ContentRating          string            `json:"contentRating"`
	Tags                   []Tag             `json:"tags"`
	State                  string            `json:"state"`
	Version                int               `json:"version"`
	CreatedAt              time.Time         `json:"createdAt"`
	UpdatedAt              time.Time         `json:"updatedAt"`
}

// Manga is an immutable snapshot of one manga response, with lazily resolved
// relationships cached per instance.
type Manga struct {
	ID            string
	Attributes    MangaAttributes
	Relationships Relationships

	client *Client

	authors mo.Option[[]*Author]
	artists mo.Option[[]*Artist]
}

func (m *Manga) String() string {
	return m.Title("en")
}

// Title returns the manga title for the given language, with fallbacks.
func (m *Manga) Title(lang string) string {
	return m.Attributes.Title.Get(lang)
}

// buildManga materializes a Manga from an entity payload.
func buildManga(c *Client, e entity) (*Manga, error) {
	m := &Manga{ID: e.ID, client: c, Relationships: newRelationships(e.Relationships)}
	if err := json.Unmarshal(e.Attributes, &m.Attributes); err != nil {
		return nil, fmt.Errorf("decode manga attributes: %w", err)
	}
	return m, nil
}

// resolveAuthors materializes author-type relationship entries: resolved
// entries decode locally, stubs cost one follow-up fetch each.
func resolveAuthors(ctx context.Context, c *Client, entries []Relationship) ([]*Author, error) {
	var authors []*Author
	for _, entry := range entries {
		if entry.Resolved() {
			author, err := buildAuthor(c, entity{ID: entry.ID, Attributes: entry.Attributes})
			if err != nil {
				return nil, err
			}
			authors = append(authors, author)
			continue
		}

		author, err := c.GetAuthor(ctx, entry.ID)
		if err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}
	return authors, nil
}

// Authors resolves the manga's authors. An empty result means the
// relationship was absent from the payload, which is ambiguous between "none
// exist" and "not requested via includes[]".
func (m *Manga) Authors(ctx context.Context) ([]*Author, error) {
	if cached, ok := m.authors.Get(); ok {
		return cached, nil
	}

	authors, err := resolveAuthors(ctx, m.client, m.Relationships.OfType("author"))
	if err != nil {
		return nil, err
	}
	m.authors = mo.Some(authors)
	return authors, nil
}

// Artists resolves the manga's artists, with the same caching and ambiguity
// semantics as Authors.
func (m *Manga) Artists(ctx context.Context) ([]*Artist, error) {
	if cached, ok := m.artists.Get(); ok {
		return cached, nil
	}

	var artists []*Artist
	for _, entry := range m.Relationships.OfType("artist") {
		if entry.Resolved() {
			artist, err := buildArtist(m.client, entity{ID: entry.ID, Attributes: entry.Attributes})
			if err != nil {
				return nil, err
			}
			artists = append(artists, artist)
			continue
		}

		artist, err := m.client.GetArtist(ctx, entry.ID)
		if err != nil {
			return nil, err
		}
		artists = append(artists, artist)
	}

	m.artists = mo.Some(artists)
	return artists, nil
}

// CoverURL resolves the manga's cover art URL. Size 512 or 256 selects a
// thumbnail; any other value returns the original quality URL. A None result
// means the cover_art relationship was absent from the payload.
func (m *Manga) CoverURL(ctx context.Context, size int) (mo.Option[string], error) {
	entry, ok := m.Relationships.First("cover_art").Get()
	if !ok {
		return mo.None[string](), nil
	}

	var fileName string
	if entry.Resolved() {
		var attrs CoverAttributes
		if err := json.Unmarshal(entry.Attributes, &attrs); err != nil {
			return mo.None[string](), fmt.Errorf("decode cover attributes: %w", err)
		}
		fileName = attrs.FileName
	} else {
		cover, err := m.client.GetCover(ctx, entry.ID)
		if err != nil {
			return mo.None[string](), err
		}
		fileName = cover.Attributes.FileName
	}

	suffix := ""
	switch size {
	case 512:
		suffix = ".512.jpg"
	case 256:
		suffix = ".256.jpg"
	}

	return mo.Some(fmt.Sprintf("%s/covers/%s/%s%s", constant.UploadsBaseURL, m.ID, fileName, suffix)), nil
}

// MangaListOptions are the supported filters of the manga search endpoint.
type MangaListOptions struct {
	Limit                  int       `url:"limit,omitempty"`
	Offset                 int       `url:"offset,omitempty"`
	Title                  string    `url:"title,omitempty"`
	Authors                []string  `url:"authors,omitempty,brackets"`
	Artists                []string  `url:"artists,omitempty,brackets"`
	Year                   int       `url:"year,omitempty"`
	IncludedTags           []string  `url:"includedTags,omitempty,brackets"`
	IncludedTagsMode       string    `url:"includedTagsMode,omitempty"`
	ExcludedTags           []string  `url:"excludedTags,omitempty,brackets"`
	ExcludedTagsMode       string    `url:"excludedTagsMode,omitempty"`
	Status                 []string  `url:"status,omitempty,brackets"`
	OriginalLanguage       []string  `url:"originalLanguage,omitempty,brackets"`
	PublicationDemographic []string  `url:"publicationDemographic,omitempty,brackets"`
	IDs                    []string  `url:"ids,omitempty,brackets"`
	ContentRating          []string  `url:"contentRating,omitempty,brackets"`
	CreatedAtSince         Timestamp `url:"createdAtSince,omitempty"`
	UpdatedAtSince         Timestamp `url:"updatedAtSince,omitempty"`
	Order                  Order     `url:"order,omitempty"`
	Includes               []string  `url:"includes,omitempty,brackets"`
}

// SearchManga performs a filtered manga search. Limits are clamped to the
// server-side bounds before the request is sent.
func (c *Client) SearchManga(ctx context.Context, opts MangaListOptions) (Collection[*Manga], error) {
	if opts.Limit == 0 {
		opts.Limit = 100
	}
	opts.Limit, opts.Offset = clampLimits(opts.Limit, opts.Offset, MaxLimit)

	encoded, err := query.FromStruct(opts)
	if err != nil {
		return Collection[*Manga]{}, err
	}

	var payload listResponse
	route := NewRoute(http.MethodGet, "/manga")
	if err := c.requestJSON(ctx, route, requestOptions{query: encoded}, &payload); err != nil {
		return Collection[*Manga]{}, err
	}

	return buildCollection(c, payload, buildManga)
}

// defaultMangaIncludes expands all optional relationships unless overridden.
var defaultMangaIncludes = []string{"author", "artist", "cover_art"}

// GetManga fetches one manga by UUID. When no includes are given, author,
// artist and cover_art are expanded by default.
func (c *Client) GetManga(ctx context.Context, mangaID string, includes ...string) (*Manga, error) {
	if len(includes) == 0 {
		includes = defaultMangaIncludes
	}

	encoded := query.New().Set("includes", includes).Encode()

	var payload singleResponse
	route := NewRoute(http.MethodGet, "/manga/%s", mangaID)
	if err := c.requestJSON(ctx, route, requestOptions{query: encoded}, &payload); err != nil {
		return nil, err
	}

	return buildManga(c, payload.Data)
}

// GetRandomManga fetches a random manga with the given includes expanded.
func (c *Client) GetRandomManga(ctx context.Context, includes ...string) (*Manga, error) {
	if len(includes) == 0 {
		includes = defaultMangaIncludes
	}

	encoded := query.New().Set("includes", includes).Encode()

	var payload singleResponse
	route := NewRoute(http.MethodGet, "/manga/random")
	if err := c.requestJSON(ctx, route, requestOptions{query: encoded}, &payload); err != nil {
		return nil, err
	}

	return buildManga(c, payload.Data)
}

// CreateMangaOptions is the request body of a manga draft creation.
type CreateMangaOptions struct {
	Title                  LocalizedString   `json:"title"`
	AltTitles              []LocalizedString `json:"altTitles,omitempty"`
	Description            LocalizedString   `json:"description,omitempty"`
	Authors                []string          `json:"authors,omitempty"`
	Artists                []string          `json:"artists,omitempty"`
	Links                  map[string]string `json:"links,omitempty"`
	OriginalLanguage       string            `json:"originalLanguage"`
	LastVolume             *string           `json:"lastVolume,omitempty"`
	LastChapter            *string           `json:"lastChapter,omitempty"`
	PublicationDemographic *string           `json:"publicationDemographic,omitempty"`
	Status                 string            `json:"status"`
	Year                   *int              `json:"year,omitempty"`
	ContentRating          string            `json:"contentRating"`
	Tags                   []string          `json:"tags,omitempty"`
}

// CreateManga submits a new manga draft.
func (c *Client) CreateManga(ctx context.Context, opts CreateMangaOptions) (*Manga, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var payload singleResponse
	route := NewRoute(http.MethodPost, "/manga")
	if err := c.requestJSON(ctx, route, requestOptions{body: opts}, &payload); err != nil {
		return nil, err
	}

	return buildManga(c, payload.Data)
}

// UpdateMangaOptions is the tri-state request body of a manga update.
// Unprovided fields are left unchanged server-side; explicitly nulled fields
// are cleared. Version is mandatory and must match the current revision.
type UpdateMangaOptions struct {
	Version                int
	Title                  query.Tristate[LocalizedString]
	AltTitles              query.Tristate[[]LocalizedString]
	Description            query.Tristate[LocalizedString]
	Authors                query.Tristate[[]string]
	Artists                query.Tristate[[]string]
	Links                  query.Tristate[map[string]string]
	OriginalLanguage       query.Tristate[string]
	LastVolume             query.Tristate[string]
	LastChapter            query.Tristate[string]
	PublicationDemographic query.Tristate[string]
	Status                 query.Tristate[string]
	Year                   query.Tristate[int]
	ContentRating          query.Tristate[string]
	Tags                   query.Tristate[[]string]
}

func (o UpdateMangaOptions) body() map[string]any {
	body := map[string]any{"version": o.Version}
	o.Title.Apply(body, "title")
	o.AltTitles.Apply(body, "altTitles")
	o.Description.Apply(body, "description")
	o.Authors.Apply(body, "authors")
	o.Artists.Apply(body, "artists")
	o.Links.Apply(body, "links")
	o.OriginalLanguage.Apply(body, "originalLanguage")
	o.LastVolume.Apply(body, "lastVolume")
	o.LastChapter.Apply(body, "lastChapter")
	o.PublicationDemographic.Apply(body, "publicationDemographic")
	o.Status.Apply(body, "status")
	o.Year.Apply(body, "year")
	o.ContentRating.Apply(body, "contentRating")
	o.Tags.Apply(body, "tags")
	return body
}

// UpdateManga applies a partial update to a manga.
func (c *Client) UpdateManga(ctx context.Context, mangaID string, opts UpdateMangaOptions) (*Manga, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var payload singleResponse
	route := NewRoute(http.MethodPut, "/manga/%s", mangaID)
	if err := c.requestJSON(ctx, route, requestOptions{body: opts.body()}, &payload); err != nil {
		return nil, err
	}

	return buildManga(c, payload.Data)
}

// DeleteManga removes a manga entirely.
func (c *Client) DeleteManga(ctx context.Context, mangaID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	route := NewRoute(http.MethodDelete, "/manga/%s", mangaID)
	return c.requestJSON(ctx, route, requestOptions{}, nil)
}

// FollowManga adds a manga to the logged-in user's follows.
func (c *Client) FollowManga(ctx context.Context, mangaID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	route := NewRoute(http.MethodPost, "/manga/%s/follow", mangaID)
	return c.requestJSON(ctx, route, requestOptions{}, nil)
}

// UnfollowManga removes a manga from the logged-in user's follows.
func (c *Client) UnfollowManga(ctx context.Context, mangaID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	route := NewRoute(http.MethodDelete, "/manga/%s/follow", mangaID)
	return c.requestJSON(ctx, route, requestOptions{}, nil)
}

// MangaFeed lists the chapters of one manga.
func (c *Client) MangaFeed(ctx context.Context, mangaID string, opts FeedOptions) (Collection[*Chapter], error) {
	route := NewRoute(http.MethodGet, "/manga/%s/feed", mangaID)
	return c.chapterFeed(ctx, route, opts)
}

// GetFollowedManga lists the manga followed by the logged-in user.
func (c *Client) GetFollowedManga(ctx context.Context, limit, offset int) (Collection[*Manga], error) {
	if err := c.requireAuth(); err != nil {
		return Collection[*Manga]{}, err
	}

	limit, offset = clampLimits(limit, offset, MaxLimit)
	encoded := query.New().Set("limit", limit).Set("offset", offset).Encode()

	var payload listResponse
	route := NewRoute(http.MethodGet, "/user/follows/manga")
	if err := c.requestJSON(ctx, route, requestOptions{query: encoded}, &payload); err != nil {
		return Collection[*Manga]{}, err
	}

	return buildCollection(c, payload, buildManga)
}

// GetMangaReadingStatus fetches the logged-in user's reading status for one manga.
func (c *Client) GetMangaReadingStatus(ctx context.Context, mangaID string) (string, error) {
	if err := c.requireAuth(); err != nil {
		return "", err
	}

	var payload struct {
		Result string `json:"result"`
		Status string `json:"status"`
	}
	route := NewRoute(http.MethodGet, "/manga/%s/status", mangaID)
	if err := c.requestJSON(ctx, route, requestOptions{}, &payload); err != nil {
		return "", err
	}
	return payload.Status, nil
}

// UpdateMangaReadingStatus sets (or, with an empty status, clears) the
// logged-in user's reading status for one manga.
func (c *Client) UpdateMangaReadingStatus(ctx context.Context, mangaID, status string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	body := map[string]any{"status": nil}
	if status != "" {
		body["status"] = status
	}

	route := NewRoute(http.MethodPost, "/manga/%s/status", mangaID)
	return c.requestJSON(ctx, route, requestOptions{body: body}, nil)
}

// AggregateChapter is one chapter entry of a manga aggregate.
type AggregateChapter struct {
	Chapter string   `json:"chapter"`
	ID      string   `json:"id"`
	Others  []string `json:"others"`
	Count   int      `json:"count"`
}

// AggregateVolume groups the chapters of one volume in a manga aggregate.
type AggregateVolume struct {
	Volume   string                      `json:"volume"`
	Count    int                         `json:"count"`
	Chapters map[string]AggregateChapter `json:"chapters"`
}

// GetMangaAggregate summarizes a manga's volumes and chapters.
func (c *Client) GetMangaAggregate(ctx context.Context, mangaID string, translatedLanguage ...string) (map[string]AggregateVolume, error) {
	q := query.New()
	if len(translatedLanguage) > 0 {
		q.Set("translatedLanguage", translatedLanguage)
	}

	var payload struct {
		Result  string                     `json:"result"`
		Volumes map[string]AggregateVolume `json:"volumes"`
	}
	route := NewRoute(http.MethodGet, "/manga/%s/aggregate", mangaID)
	if err := c.requestJSON(ctx, route, requestOptions{query: q.Encode()}, &payload); err != nil {
		return nil, err
	}
	return payload.Volumes, nil
}

// GetTags fetches the current manga tag taxonomy.
func (c *Client) GetTags(ctx context.Context) ([]Tag, error) {
	var payload struct {
		Result string `json:"result"`
		Data   []Tag  `json:"data"`
	}
	route := NewRoute(http.MethodGet, "/manga/tag")
	if err := c.requestJSON(ctx, route, requestOptions{}, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}
