package mangadex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/mangasan-dev/mangasan/constant"
	"github.com/mangasan-dev/mangasan/query"
)

// CoverAttributes is the typed attribute block of a cover art entity.
type CoverAttributes struct {
	FileName    string    `json:"fileName"`
	Description string    `json:"description"`
	Volume      *string   `json:"volume"`
	Locale      string    `json:"locale"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Cover is a single cover art upload attached to a manga.
type Cover struct {
	ID            string
	Attributes    CoverAttributes
	Relationships Relationships

	client *Client
}

func buildCover(c *Client, e entity) (*Cover, error) {
	cv := &Cover{ID: e.ID, client: c, Relationships: newRelationships(e.Relationships)}
	if err := json.Unmarshal(e.Attributes, &cv.Attributes); err != nil {
		return nil, fmt.Errorf("decode cover attributes: %w", err)
	}
	return cv, nil
}

// URL builds the full image URL for this cover. Size 512 or 256 selects a
// pre-scaled thumbnail; any other value returns the original upload.
func (cv *Cover) URL(size int) (string, error) {
	entry, ok := cv.Relationships.First("manga").Get()
	if !ok {
		return "", fmt.Errorf("cover %s has no manga relationship", cv.ID)
	}

	var suffix string
	switch size {
	case 512:
		suffix = ".512.jpg"
	case 256:
		suffix = ".256.jpg"
	}
	return fmt.Sprintf("%s/covers/%s/%s%s", constant.UploadsBaseURL, entry.ID, cv.Attributes.FileName, suffix), nil
}

// CoverListOptions are the supported filters of the cover listing endpoint.
type CoverListOptions struct {
	Limit     int      `url:"limit,omitempty"`
	Offset    int      `url:"offset,omitempty"`
	Manga     []string `url:"manga,omitempty,brackets"`
	IDs       []string `url:"ids,omitempty,brackets"`
	Uploaders []string `url:"uploaders,omitempty,brackets"`
	Locales   []string `url:"locales,omitempty,brackets"`
	Order     Order    `url:"order,omitempty"`
	Includes  []string `url:"includes,omitempty,brackets"`
}

// ListCovers performs a filtered cover search.
func (c *Client) ListCovers(ctx context.Context, opts CoverListOptions) (Collection[*Cover], error) {
	if opts.Limit == 0 {
		opts.Limit = 10
	}
	opts.Limit, opts.Offset = clampLimits(opts.Limit, opts.Offset, 100)

	encoded, err := query.FromStruct(opts)
	if err != nil {
		return Collection[*Cover]{}, err
	}

	var payload listResponse
	route := NewRoute(http.MethodGet, "/cover")
	if err := c.requestJSON(ctx, route, requestOptions{query: encoded}, &payload); err != nil {
		return Collection[*Cover]{}, err
	}

	return buildCollection(c, payload, buildCover)
}

// GetCover fetches one cover by UUID.
func (c *Client) GetCover(ctx context.Context, coverID string, includes ...string) (*Cover, error) {
	q := query.New()
	if len(includes) > 0 {
		q.Set("includes", includes)
	}

	var payload singleResponse
	route := NewRoute(http.MethodGet, "/cover/%s", coverID)
	if err := c.requestJSON(ctx, route, requestOptions{query: q.Encode()}, &payload); err != nil {
		return nil, err
	}

	return buildCover(c, payload.Data)
}

// UploadCoverOptions carries the image bytes and metadata of a cover upload.
type UploadCoverOptions struct {
	FileName string
	Data     []byte
	Volume   *string
	Locale   string
}

// UploadCover attaches a new cover image to a manga. The payload is sent as
// multipart form data rather than JSON.
func (c *Client) UploadCover(ctx context.Context, mangaID string, opts UploadCoverOptions) (*Cover, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", opts.FileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(opts.Data); err != nil {
		return nil, err
	}
	if opts.Volume != nil {
		if err := form.WriteField("volume", *opts.Volume); err != nil {
			return nil, err
		}
	}
	if opts.Locale != "" {
		if err := form.WriteField("locale", opts.Locale); err != nil {
			return nil, err
		}
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	var payload singleResponse
	route := NewRoute(http.MethodPost, "/cover/%s", mangaID)
	reqOpts := requestOptions{
		rawBody: buf.Bytes(),
		header:  http.Header{"Content-Type": []string{form.FormDataContentType()}},
	}
	if err := c.requestJSON(ctx, route, reqOpts, &payload); err != nil {
		return nil, err
	}

	return buildCover(c, payload.Data)
}

// EditCoverOptions is the tri-state request body of a cover edit.
type EditCoverOptions struct {
	Version     int
	Volume      query.Tristate[string]
	Description query.Tristate[string]
	Locale      query.Tristate[string]
}

func (o EditCoverOptions) body() map[string]any {
	body := map[string]any{"version": o.Version}
	o.Volume.Apply(body, "volume")
	o.Description.Apply(body, "description")
	o.Locale.Apply(body, "locale")
	return body
}

// EditCover applies a partial update to a cover's metadata.
func (c *Client) EditCover(ctx context.Context, coverID string, opts EditCoverOptions) (*Cover, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var payload singleResponse
	route := NewRoute(http.MethodPut, "/cover/%s", coverID)
	if err := c.requestJSON(ctx, route, requestOptions{body: opts.body()}, &payload); err != nil {
		return nil, err
	}

	return buildCover(c, payload.Data)
}

// DeleteCover removes a cover upload.
func (c *Client) DeleteCover(ctx context.Context, coverID string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	route := NewRoute(http.MethodDelete, "/cover/%s", coverID)
	return c.requestJSON(ctx, route, requestOptions{}, nil)
}
