package mangadex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"
)

// UploadSessionAttributes is the typed attribute block of an upload session.
type UploadSessionAttributes struct {
	IsCommitted bool      `json:"isCommitted"`
	IsProcessed bool      `json:"isProcessed"`
	IsDeleted   bool      `json:"isDeleted"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UploadSession is an open chapter upload. A user can hold at most one at a
// time; starting a second one fails with UploadInProgressError.
type UploadSession struct {
	ID            string
	Attributes    UploadSessionAttributes
	Relationships Relationships

	client *Client
}

func buildUploadSession(c *Client, e entity) (*UploadSession, error) {
	s := &UploadSession{ID: e.ID, client: c, Relationships: newRelationships(e.Relationships)}
	if err := json.Unmarshal(e.Attributes, &s.Attributes); err != nil {
		return nil, fmt.Errorf("decode upload session attributes: %w", err)
	}
	return s, nil
}

// GetUploadSession fetches the user's currently open upload session, if any.
func (c *Client) GetUploadSession(ctx context.Context) (*UploadSession, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var payload singleResponse
	route := NewRoute(http.MethodGet, "/upload")
	if err := c.requestJSON(ctx, route, requestOptions{}, &payload); err != nil {
		return nil, err
	}
	return buildUploadSession(c, payload.Data)
}

// BeginUploadSession opens a new upload session for a manga. If a session is
// already open it is surfaced as an UploadInProgressError carrying the stale
// session's ID so the caller can abandon or resume it.
func (c *Client) BeginUploadSession(ctx context.Context, mangaID string, groupIDs []string) (*UploadSession, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	if existing, err := c.GetUploadSession(ctx); err == nil {
		return nil, &UploadInProgressError{SessionID: existing.ID}
	}

	body := map[string]any{
		"manga":  mangaID,
		"groups": groupIDs,
	}

	var payload singleResponse
	route := NewRoute(http.MethodPost, "/upload/begin")
	if err := c.requestJSON(ctx, route, requestOptions{body: body}, &payload); err != nil {
		return nil, err
	}
	return buildUploadSession(c, payload.Data)
}

// UploadedPage is one page file accepted into an upload session.
type UploadedPage struct {
	ID         string
	Attributes struct {
		OriginalFileName string `json:"originalFileName"`
		FileHash         string `json:"fileHash"`
		FileSize         int    `json:"fileSize"`
		MimeType         string `json:"mimeType"`
		Version          int    `json:"version"`
	}
}

// PageFile pairs a file name with its image bytes for upload.
type PageFile struct {
	Name string
	Data []byte
}

// UploadPages sends page images into an open session as multipart form data.
// The API caps one request at ten files; callers with more pages batch the
// calls themselves.
func (s *UploadSession) UploadPages(ctx context.Context, pages []PageFile) ([]UploadedPage, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to upload")
	}
	if len(pages) > 10 {
		return nil, fmt.Errorf("at most 10 pages per request, got %d", len(pages))
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for i, page := range pages {
		part, err := form.CreateFormFile(fmt.Sprintf("file%d", i+1), page.Name)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(page.Data); err != nil {
			return nil, err
		}
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	var payload listResponse
	route := NewRoute(http.MethodPost, "/upload/%s", s.ID)
	opts := requestOptions{
		rawBody: buf.Bytes(),
		header:  http.Header{"Content-Type": []string{form.FormDataContentType()}},
	}
	if err := s.client.requestJSON(ctx, route, opts, &payload); err != nil {
		return nil, err
	}

	uploaded := make([]UploadedPage, 0, len(payload.Data))
	for _, e := range payload.Data {
		var page UploadedPage
		page.ID = e.ID
		if err := json.Unmarshal(e.Attributes, &page.Attributes); err != nil {
			return nil, fmt.Errorf("decode uploaded page attributes: %w", err)
		}
		uploaded = append(uploaded, page)
	}
	return uploaded, nil
}

// DeletePage removes an uploaded page from the session before commit.
func (s *UploadSession) DeletePage(ctx context.Context, pageID string) error {
	route := NewRoute(http.MethodDelete, "/upload/%s/%s", s.ID, pageID)
	return s.client.requestJSON(ctx, route, requestOptions{}, nil)
}

// CommitDraft is the chapter metadata sent when committing an upload session.
type CommitDraft struct {
	Volume             *string `json:"volume"`
	Chapter            *string `json:"chapter"`
	Title              *string `json:"title"`
	TranslatedLanguage string  `json:"translatedLanguage"`
}

// Commit finalizes the session into a chapter. Page order follows the given
// page IDs.
func (s *UploadSession) Commit(ctx context.Context, draft CommitDraft, pageOrder []string) (*Chapter, error) {
	body := map[string]any{
		"chapterDraft": draft,
		"pageOrder":    pageOrder,
	}

	var payload singleResponse
	route := NewRoute(http.MethodPost, "/upload/%s/commit", s.ID)
	if err := s.client.requestJSON(ctx, route, requestOptions{body: body}, &payload); err != nil {
		return nil, err
	}
	return buildChapter(s.client, payload.Data)
}

// Abandon discards the session and every page uploaded into it.
func (s *UploadSession) Abandon(ctx context.Context) error {
	route := NewRoute(http.MethodDelete, "/upload/%s", s.ID)
	return s.client.requestJSON(ctx, route, requestOptions{}, nil)
}
