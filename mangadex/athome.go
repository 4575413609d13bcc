package mangadex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/mangasan-dev/mangasan/filesystem"
	"github.com/mangasan-dev/mangasan/key"
	"github.com/mangasan-dev/mangasan/log"
	"github.com/mangasan-dev/mangasan/query"
	"github.com/mangasan-dev/mangasan/util"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// mdahReportURL receives page download health reports for the MangaDex@Home
// network. Reports are skipped entirely when pages come from mangadex.org
// itself.
const mdahReportURL = "https://api.mangadex.network/report"

// AtHomeServer is a temporary page server assignment for one chapter. The
// base URL expires after roughly fifteen minutes.
type AtHomeServer struct {
	BaseURL string `json:"baseUrl"`
	Chapter struct {
		Hash      string   `json:"hash"`
		Data      []string `json:"data"`
		DataSaver []string `json:"dataSaver"`
	} `json:"chapter"`
}

// Pages returns the page file names for the requested quality.
func (s *AtHomeServer) Pages(dataSaver bool) []string {
	if dataSaver {
		return s.Chapter.DataSaver
	}
	return s.Chapter.Data
}

// pageURL builds the full URL of one page on this server.
func (s *AtHomeServer) pageURL(dataSaver bool, page string) string {
	quality := "data"
	if dataSaver {
		quality = "data-saver"
	}
	return fmt.Sprintf("%s/%s/%s/%s", s.BaseURL, quality, s.Chapter.Hash, page)
}

// GetAtHomeServer requests a page server assignment for a chapter.
func (c *Client) GetAtHomeServer(ctx context.Context, chapterID string, forcePort443 bool) (*AtHomeServer, error) {
	q := query.New().Set("forcePort443", forcePort443)

	var server AtHomeServer
	route := NewRoute(http.MethodGet, "/at-home/server/%s", chapterID)
	if err := c.requestJSON(ctx, route, requestOptions{query: q.Encode()}, &server); err != nil {
		return nil, err
	}
	return &server, nil
}

type mdahReport struct {
	URL      string `json:"url"`
	Success  bool   `json:"success"`
	Bytes    int64  `json:"bytes"`
	Duration int64  `json:"duration"`
	Cached   bool   `json:"cached"`
}

// reportPage tells the MangaDex@Home network how a page download went.
// Failures here are logged and swallowed; a broken report endpoint must not
// fail the download.
func (c *Client) reportPage(ctx context.Context, report mdahReport) {
	if !viper.GetBool(key.DownloadReportMDAH) {
		return
	}

	body := lo.Must(json.Marshal(report))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mdahReportURL, bytes.NewReader(body))
	if err != nil {
		log.Warnf("mdah report: %s", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warnf("mdah report: %s", err)
		return
	}
	_ = resp.Body.Close()
}

// downloadPage fetches one page from the assigned server and reports the
// outcome to the MangaDex@Home network.
func (c *Client) downloadPage(ctx context.Context, server *AtHomeServer, dataSaver bool, page string) ([]byte, error) {
	pageURL := server.pageURL(dataSaver, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.reportPage(ctx, mdahReport{URL: pageURL, Duration: time.Since(started).Milliseconds()})
		return nil, err
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	elapsed := time.Since(started).Milliseconds()
	ok := readErr == nil && resp.StatusCode == http.StatusOK

	c.reportPage(ctx, mdahReport{
		URL:      pageURL,
		Success:  ok,
		Bytes:    int64(len(data)),
		Duration: elapsed,
		Cached:   resp.Header.Get("X-Cache") == "HIT",
	})

	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page %s: unexpected status %d", page, resp.StatusCode)
	}
	return data, nil
}

// downloadPageRetrying fetches one page, re-requesting a fresh server
// assignment between attempts since the previous base URL may have expired.
// The attempt budget bounds how long a flaky node can stall a download.
func (c *Client) downloadPageRetrying(ctx context.Context, chapterID string, server *AtHomeServer, dataSaver bool, page string) ([]byte, *AtHomeServer, error) {
	attempts := viper.GetInt(key.DownloadRetries)
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := c.downloadPage(ctx, server, dataSaver, page)
		if err == nil {
			return data, server, nil
		}
		lastErr = err
		log.Warnf("page %s attempt %d/%d: %s", page, attempt, attempts, err)

		if attempt == attempts {
			break
		}

		fresh, err := c.GetAtHomeServer(ctx, chapterID, false)
		if err != nil {
			return nil, server, err
		}
		server = fresh
	}
	return nil, server, fmt.Errorf("page %s: %w", page, lastErr)
}

// DownloadChapter fetches every page of a chapter into dir, one file per
// page, named by its position. Returns the written file paths in page order.
func (c *Client) DownloadChapter(ctx context.Context, chapter *Chapter, dir string) ([]string, error) {
	dataSaver := viper.GetBool(key.DownloadDataSaver)

	server, err := c.GetAtHomeServer(ctx, chapter.ID, false)
	if err != nil {
		return nil, err
	}

	pages := server.Pages(dataSaver)
	if len(pages) == 0 {
		return nil, fmt.Errorf("chapter %s has no pages to download", chapter.ID)
	}

	if err := filesystem.API().MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	written := make([]string, 0, len(pages))
	for i, page := range pages {
		data, fresh, err := c.downloadPageRetrying(ctx, chapter.ID, server, dataSaver, page)
		if err != nil {
			return nil, err
		}
		server = fresh

		name := util.SanitizeFilename(fmt.Sprintf("%04d%s", i+1, filepath.Ext(page)))
		path := filepath.Join(dir, name)
		if err := afero.WriteFile(filesystem.API(), path, data, 0o644); err != nil {
			return nil, err
		}
		written = append(written, path)
	}

	log.Infof("downloaded %s of chapter %s", util.Quantify(len(written), "page", "pages"), chapter.ID)
	return written, nil
}
