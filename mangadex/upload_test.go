package mangadex

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func uploadSessionPayload(id string) map[string]any {
	return map[string]any{
		"result": "ok",
		"data": map[string]any{
			"id":   id,
			"type": "upload_session",
			"attributes": map[string]any{
				"isCommitted": false,
				"isProcessed": false,
				"isDeleted":   false,
				"version":     1,
			},
		},
	}
}

func TestBeginUploadSession(t *testing.T) {
	Convey("BeginUploadSession", t, func() {
		ctx := context.Background()

		login := func(mux *http.ServeMux) {
			mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"result": "ok",
					"token":  map[string]string{"session": "session-1", "refresh": "refresh-1"},
				})
			})
		}

		Convey("Surfaces an already-open session instead of starting a new one", func() {
			var begins atomic.Int32
			mux := http.NewServeMux()
			login(mux)
			mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(uploadSessionPayload("stale-session"))
			})
			mux.HandleFunc("/upload/begin", func(w http.ResponseWriter, r *http.Request) {
				begins.Add(1)
			})
			srv := httptest.NewServer(mux)
			defer srv.Close()

			c, err := NewWithLogin("user", "pass")
			So(err, ShouldBeNil)
			c.SetBaseURL(srv.URL)

			_, err = c.BeginUploadSession(ctx, "manga-id", nil)
			var inProgress *UploadInProgressError
			So(errors.As(err, &inProgress), ShouldBeTrue)
			So(inProgress.SessionID, ShouldEqual, "stale-session")
			So(begins.Load(), ShouldEqual, 0)
		})

		Convey("Opens a session when none is pending", func() {
			mux := http.NewServeMux()
			login(mux)
			mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"result":"error"}`, http.StatusNotFound)
			})
			mux.HandleFunc("/upload/begin", func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(uploadSessionPayload("fresh-session"))
			})
			srv := httptest.NewServer(mux)
			defer srv.Close()

			c, err := NewWithLogin("user", "pass")
			So(err, ShouldBeNil)
			c.SetBaseURL(srv.URL)

			session, err := c.BeginUploadSession(ctx, "manga-id", nil)
			So(err, ShouldBeNil)
			So(session.ID, ShouldEqual, "fresh-session")
		})
	})
}
