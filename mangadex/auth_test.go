package mangadex

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func newAuthServer(loginCalls, refreshCalls *atomic.Int32) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		loginCalls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"result": "ok",
			"token":  map[string]string{"session": "session-1", "refresh": "refresh-1"},
		})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"result": "ok",
			"token":  map[string]string{"session": "session-2", "refresh": "refresh-2"},
		})
	})
	mux.HandleFunc("/manga/tag", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"result": "ok", "data": []any{}})
	})
	return httptest.NewServer(mux)
}

func TestTokenLifecycle(t *testing.T) {
	Convey("Token lifecycle", t, func() {
		ctx := context.Background()

		Convey("First authenticated request mints a session", func() {
			var logins, refreshes atomic.Int32
			srv := newAuthServer(&logins, &refreshes)
			defer srv.Close()

			c, err := NewWithLogin("user", "hunter2")
			So(err, ShouldBeNil)
			c.SetBaseURL(srv.URL)

			token, err := c.ensureToken(ctx)
			So(err, ShouldBeNil)
			So(token, ShouldEqual, "session-1")
			So(logins.Load(), ShouldEqual, 1)
		})

		Convey("Within the staleness window the token is reused without network calls", func() {
			var logins, refreshes atomic.Int32
			srv := newAuthServer(&logins, &refreshes)
			defer srv.Close()

			c, _ := NewWithLogin("user", "hunter2")
			c.SetBaseURL(srv.URL)

			_, err := c.ensureToken(ctx)
			So(err, ShouldBeNil)

			for i := 0; i < 5; i++ {
				token, err := c.ensureToken(ctx)
				So(err, ShouldBeNil)
				So(token, ShouldEqual, "session-1")
			}
			So(logins.Load(), ShouldEqual, 1)
			So(refreshes.Load(), ShouldEqual, 0)
		})

		Convey("A stale token triggers a refresh exchange", func() {
			var logins, refreshes atomic.Int32
			srv := newAuthServer(&logins, &refreshes)
			defer srv.Close()

			c, _ := NewWithLogin("user", "hunter2")
			c.SetBaseURL(srv.URL)

			_, err := c.ensureToken(ctx)
			So(err, ShouldBeNil)

			c.mu.Lock()
			c.state.lastRefresh = time.Now().Add(-16 * time.Minute)
			c.mu.Unlock()

			token, err := c.ensureToken(ctx)
			So(err, ShouldBeNil)
			So(token, ShouldEqual, "session-2")
			So(refreshes.Load(), ShouldEqual, 1)
			So(c.RefreshToken(), ShouldEqual, "refresh-2")
		})

		Convey("A failed refresh leaves the previous state untouched", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{"result": "error"})
			})
			srv := httptest.NewServer(mux)
			defer srv.Close()

			c, _ := NewWithLogin("user", "hunter2")
			c.SetBaseURL(srv.URL)

			stamp := time.Now().Add(-20 * time.Minute)
			c.mu.Lock()
			c.state = authState{session: "old-session", refresh: "old-refresh", lastRefresh: stamp}
			c.mu.Unlock()

			_, err := c.ensureToken(ctx)
			So(err, ShouldNotBeNil)

			var refreshErr *RefreshError
			So(errors.As(err, &refreshErr), ShouldBeTrue)
			So(refreshErr.LastRefresh.Equal(stamp), ShouldBeTrue)

			c.mu.Lock()
			So(c.state.session, ShouldEqual, "old-session")
			So(c.state.refresh, ShouldEqual, "old-refresh")
			c.mu.Unlock()
		})

		Convey("A refresh response without a rotated token keeps the old one", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"result": "ok",
					"token":  map[string]string{"session": "session-2"},
				})
			})
			srv := httptest.NewServer(mux)
			defer srv.Close()

			c, _ := NewWithRefreshToken("seed-refresh")
			c.SetBaseURL(srv.URL)

			token, err := c.ensureToken(ctx)
			So(err, ShouldBeNil)
			So(token, ShouldEqual, "session-2")
			So(c.RefreshToken(), ShouldEqual, "seed-refresh")
		})

		Convey("A refresh-token client mints by exchanging the seed", func() {
			var logins, refreshes atomic.Int32
			srv := newAuthServer(&logins, &refreshes)
			defer srv.Close()

			c, err := NewWithRefreshToken("seed-refresh")
			So(err, ShouldBeNil)
			c.SetBaseURL(srv.URL)

			token, err := c.ensureToken(ctx)
			So(err, ShouldBeNil)
			So(token, ShouldEqual, "session-2")
			So(logins.Load(), ShouldEqual, 0)
			So(refreshes.Load(), ShouldEqual, 1)
		})

		Convey("Bad credentials surface as a LoginError", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{"result": "error"})
			})
			srv := httptest.NewServer(mux)
			defer srv.Close()

			c, _ := NewWithLogin("user", "wrong")
			c.SetBaseURL(srv.URL)

			_, err := c.ensureToken(ctx)
			var loginErr *LoginError
			So(errors.As(err, &loginErr), ShouldBeTrue)
		})
	})
}

func TestConstructors(t *testing.T) {
	Convey("Client constructors", t, func() {
		Convey("NewWithLogin rejects missing credentials", func() {
			_, err := NewWithLogin("", "pass")
			So(err, ShouldNotBeNil)
			_, err = NewWithLogin("user", "")
			So(err, ShouldNotBeNil)
		})

		Convey("NewWithRefreshToken rejects an empty token", func() {
			_, err := NewWithRefreshToken("")
			So(err, ShouldNotBeNil)
		})

		Convey("NewWithOAuth rejects an incomplete registration", func() {
			_, err := NewWithOAuth("", "secret", "user", "pass")
			So(err, ShouldNotBeNil)
			_, err = NewWithOAuth("id", "", "user", "pass")
			So(err, ShouldNotBeNil)
		})

		Convey("An unauthenticated client fails authenticated operations without a network call", func() {
			c := New()
			So(c.Authenticated(), ShouldBeFalse)

			err := c.FollowManga(context.Background(), "some-id")
			So(errors.Is(err, ErrAuthenticationRequired), ShouldBeTrue)
		})

		Convey("Close on an unauthenticated client is a no-op", func() {
			c := New()
			So(c.Close(context.Background()), ShouldBeNil)
		})
	})
}
