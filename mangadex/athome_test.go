package mangadex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/mangasan-dev/mangasan/filesystem"
	"github.com/mangasan-dev/mangasan/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// newAtHomeServer serves both the assignment endpoint and the page files.
// Pages fail with 500 until failures hits zero.
func newAtHomeServer(pages []string, failures *atomic.Int32, pageHits, assignments *atomic.Int32) *httptest.Server {
	var srv *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("/at-home/server/", func(w http.ResponseWriter, r *http.Request) {
		assignments.Add(1)
		payload := map[string]any{
			"baseUrl": srv.URL,
			"chapter": map[string]any{
				"hash": "abc123",
				"data": pages,
			},
		}
		json.NewEncoder(w).Encode(payload)
	})
	mux.HandleFunc("/data/abc123/", func(w http.ResponseWriter, r *http.Request) {
		pageHits.Add(1)
		if failures.Add(-1) >= 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "image-bytes")
	})

	srv = httptest.NewServer(mux)
	return srv
}

func TestDownloadRetry(t *testing.T) {
	Convey("Page download retry", t, func() {
		ctx := context.Background()
		viper.Set(key.DownloadRetries, 3)
		viper.Set(key.DownloadReportMDAH, false)
		defer viper.Reset()

		var failures, pageHits, assignments atomic.Int32

		Convey("Stops after the attempt budget is spent", func() {
			failures.Store(100)
			srv := newAtHomeServer([]string{"p1.png"}, &failures, &pageHits, &assignments)
			defer srv.Close()

			c := New()
			c.SetBaseURL(srv.URL)

			server, err := c.GetAtHomeServer(ctx, "chapter-id", false)
			So(err, ShouldBeNil)

			_, _, err = c.downloadPageRetrying(ctx, "chapter-id", server, false, "p1.png")
			So(err, ShouldNotBeNil)
			So(pageHits.Load(), ShouldEqual, 3)
			// one initial assignment plus one refresh between each retry
			So(assignments.Load(), ShouldEqual, 3)
		})

		Convey("Recovers once a fresh assignment serves the page", func() {
			failures.Store(1)
			srv := newAtHomeServer([]string{"p1.png"}, &failures, &pageHits, &assignments)
			defer srv.Close()

			c := New()
			c.SetBaseURL(srv.URL)

			server, err := c.GetAtHomeServer(ctx, "chapter-id", false)
			So(err, ShouldBeNil)

			data, _, err := c.downloadPageRetrying(ctx, "chapter-id", server, false, "p1.png")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "image-bytes")
			So(pageHits.Load(), ShouldEqual, 2)
		})
	})
}

func TestDownloadChapter(t *testing.T) {
	Convey("DownloadChapter", t, func() {
		filesystem.SetMemMapFs()
		defer filesystem.SetOsFs()

		ctx := context.Background()
		viper.Set(key.DownloadRetries, 1)
		viper.Set(key.DownloadReportMDAH, false)
		defer viper.Reset()

		var failures, pageHits, assignments atomic.Int32
		failures.Store(-1)

		srv := newAtHomeServer([]string{"p1.png", "p2.jpg"}, &failures, &pageHits, &assignments)
		defer srv.Close()

		c := New()
		c.SetBaseURL(srv.URL)

		chapter := &Chapter{ID: "chapter-id"}

		Convey("Writes every page into dir, named by position", func() {
			written, err := c.DownloadChapter(ctx, chapter, "/downloads/ch1")
			So(err, ShouldBeNil)
			So(written, ShouldResemble, []string{
				filepath.Join("/downloads/ch1", "0001.png"),
				filepath.Join("/downloads/ch1", "0002.jpg"),
			})

			data, err := afero.ReadFile(filesystem.API(), written[0])
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "image-bytes")
		})
	})
}
