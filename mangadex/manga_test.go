package mangadex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mangasan-dev/mangasan/query"
	. "github.com/smartystreets/goconvey/convey"
)

func mangaPayload(relationships string) string {
	return `{
		"result": "ok",
		"data": {
			"id": "manga-1",
			"type": "manga",
			"attributes": {
				"title": {"en": "Test Manga", "ja": "テスト"},
				"status": "ongoing",
				"contentRating": "safe",
				"version": 3
			},
			"relationships": ` + relationships + `
		}
	}`
}

func TestLocalizedString(t *testing.T) {
	Convey("LocalizedString", t, func() {
		ls := LocalizedString{"en": "English", "ja": "Japanese"}

		Convey("Returns the requested language", func() {
			So(ls.Get("ja"), ShouldEqual, "Japanese")
		})

		Convey("Falls back to English", func() {
			So(ls.Get("fr"), ShouldEqual, "English")
		})

		Convey("Falls back to any translation when English is absent", func() {
			only := LocalizedString{"ko": "Korean"}
			So(only.Get("en"), ShouldEqual, "Korean")
		})

		Convey("Returns empty for no translations at all", func() {
			So(LocalizedString{}.Get("en"), ShouldBeEmpty)
		})
	})
}

func TestTagUnmarshal(t *testing.T) {
	Convey("Tag", t, func() {
		Convey("Flattens the entity envelope", func() {
			raw := `{
				"id": "tag-1",
				"type": "tag",
				"attributes": {
					"name": {"en": "Action"},
					"description": {},
					"group": "genre"
				}
			}`

			var tag Tag
			So(json.Unmarshal([]byte(raw), &tag), ShouldBeNil)
			So(tag.ID, ShouldEqual, "tag-1")
			So(tag.Name.Get("en"), ShouldEqual, "Action")
			So(tag.Group, ShouldEqual, "genre")
		})
	})
}

func TestRelationshipResolution(t *testing.T) {
	Convey("Relationship resolution", t, func() {
		ctx := context.Background()

		Convey("Resolved entries decode locally without any fetch", func() {
			var authorFetches atomic.Int32
			mux := http.NewServeMux()
			mux.HandleFunc("/author/", func(w http.ResponseWriter, r *http.Request) {
				authorFetches.Add(1)
				w.Write([]byte(`{"result":"ok","data":{"id":"author-1","type":"author","attributes":{"name":"Fetched"}}}`))
			})
			srv := httptest.NewServer(mux)
			defer srv.Close()

			c := New()
			c.SetBaseURL(srv.URL)

			payload := mangaPayload(`[
				{"id": "author-1", "type": "author", "attributes": {"name": "Inline Author"}}
			]`)

			var resp singleResponse
			So(json.Unmarshal([]byte(payload), &resp), ShouldBeNil)
			manga, err := buildManga(c, resp.Data)
			So(err, ShouldBeNil)

			authors, err := manga.Authors(ctx)
			So(err, ShouldBeNil)
			So(authors, ShouldHaveLength, 1)
			So(authors[0].Attributes.Name, ShouldEqual, "Inline Author")
			So(authorFetches.Load(), ShouldEqual, 0)
		})

		Convey("Stub entries cost exactly one fetch each, then cache", func() {
			var authorFetches atomic.Int32
			mux := http.NewServeMux()
			mux.HandleFunc("/author/", func(w http.ResponseWriter, r *http.Request) {
				authorFetches.Add(1)
				w.Write([]byte(`{"result":"ok","data":{"id":"author-1","type":"author","attributes":{"name":"Fetched"}}}`))
			})
			srv := httptest.NewServer(mux)
			defer srv.Close()

			c := New()
			c.SetBaseURL(srv.URL)

			payload := mangaPayload(`[
				{"id": "author-1", "type": "author"}
			]`)

			var resp singleResponse
			So(json.Unmarshal([]byte(payload), &resp), ShouldBeNil)
			manga, err := buildManga(c, resp.Data)
			So(err, ShouldBeNil)

			authors, err := manga.Authors(ctx)
			So(err, ShouldBeNil)
			So(authors, ShouldHaveLength, 1)
			So(authors[0].Attributes.Name, ShouldEqual, "Fetched")
			So(authorFetches.Load(), ShouldEqual, 1)

			_, err = manga.Authors(ctx)
			So(err, ShouldBeNil)
			So(authorFetches.Load(), ShouldEqual, 1)
		})

		Convey("An absent relationship resolves to nothing, not an error", func() {
			c := New()

			var resp singleResponse
			So(json.Unmarshal([]byte(mangaPayload(`[]`)), &resp), ShouldBeNil)
			manga, err := buildManga(c, resp.Data)
			So(err, ShouldBeNil)

			authors, err := manga.Authors(ctx)
			So(err, ShouldBeNil)
			So(authors, ShouldBeEmpty)

			cover, err := manga.CoverURL(ctx, 0)
			So(err, ShouldBeNil)
			So(cover.IsAbsent(), ShouldBeTrue)
		})

		Convey("CoverURL builds thumbnail URLs from inlined attributes", func() {
			c := New()

			payload := mangaPayload(`[
				{"id": "cover-1", "type": "cover_art", "attributes": {"fileName": "abc.png"}}
			]`)

			var resp singleResponse
			So(json.Unmarshal([]byte(payload), &resp), ShouldBeNil)
			manga, err := buildManga(c, resp.Data)
			So(err, ShouldBeNil)

			url, err := manga.CoverURL(ctx, 512)
			So(err, ShouldBeNil)
			So(url.MustGet(), ShouldEndWith, "/covers/manga-1/abc.png.512.jpg")

			original, err := manga.CoverURL(ctx, 0)
			So(err, ShouldBeNil)
			So(original.MustGet(), ShouldEndWith, "/covers/manga-1/abc.png")
		})
	})
}

func TestSearchManga(t *testing.T) {
	Convey("SearchManga", t, func() {
		ctx := context.Background()

		Convey("Clamps the limit before the request goes out", func() {
			var gotLimit string
			c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotLimit = r.URL.Query().Get("limit")
				w.Write([]byte(`{"result":"ok","data":[],"limit":500,"offset":0,"total":0}`))
			}))
			defer srv.Close()

			_, err := c.SearchManga(ctx, MangaListOptions{Limit: 9000})
			So(err, ShouldBeNil)
			So(gotLimit, ShouldEqual, "500")
		})

		Convey("Encodes slice filters as bracket arrays", func() {
			var rawQuery string
			c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				rawQuery = r.URL.RawQuery
				w.Write([]byte(`{"result":"ok","data":[],"limit":100,"offset":0,"total":0}`))
			}))
			defer srv.Close()

			_, err := c.SearchManga(ctx, MangaListOptions{
				ContentRating: []string{"safe", "suggestive"},
			})
			So(err, ShouldBeNil)
			So(rawQuery, ShouldContainSubstring, "contentRating[]=safe")
			So(rawQuery, ShouldContainSubstring, "contentRating[]=suggestive")
		})

		Convey("Encodes multi-field sort directives sorted by field", func() {
			var rawQuery string
			c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				rawQuery = r.URL.RawQuery
				w.Write([]byte(`{"result":"ok","data":[],"limit":100,"offset":0,"total":0}`))
			}))
			defer srv.Close()

			_, err := c.SearchManga(ctx, MangaListOptions{
				Order: Order{"updatedAt": "desc", "createdAt": "asc", "title": "asc"},
			})
			So(err, ShouldBeNil)
			So(rawQuery, ShouldContainSubstring,
				"order[createdAt]=asc&order[title]=asc&order[updatedAt]=desc")
		})

		Convey("Carries the pagination window of the response", func() {
			c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"result":"ok","data":[],"limit":10,"offset":20,"total":95}`))
			}))
			defer srv.Close()

			page, err := c.SearchManga(ctx, MangaListOptions{Limit: 10, Offset: 20})
			So(err, ShouldBeNil)
			So(page.Limit, ShouldEqual, 10)
			So(page.Offset, ShouldEqual, 20)
			So(page.Total, ShouldEqual, 95)
			So(page.HasMore(), ShouldBeTrue)
		})
	})
}

func TestUpdateMangaBody(t *testing.T) {
	Convey("UpdateMangaOptions", t, func() {
		Convey("Unprovided fields stay out of the body", func() {
			opts := UpdateMangaOptions{Version: 3}
			body := opts.body()
			So(body, ShouldHaveLength, 1)
			So(body["version"], ShouldEqual, 3)
		})

		Convey("Provided and nulled fields both appear", func() {
			opts := UpdateMangaOptions{
				Version:    3,
				Status:     query.Set("completed"),
				LastVolume: query.Null[string](),
			}
			body := opts.body()
			So(body["status"], ShouldEqual, "completed")

			value, present := body["lastVolume"]
			So(present, ShouldBeTrue)
			So(value, ShouldBeNil)
		})
	})
}
