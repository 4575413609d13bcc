package mangadex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New()
	c.SetBaseURL(srv.URL)
	return c, srv
}

func TestDispatch(t *testing.T) {
	Convey("Request dispatch", t, func() {
		ctx := context.Background()

		Convey("Sends the fixed User-Agent on every request", func() {
			var agent string
			c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				agent = r.Header.Get("User-Agent")
				w.Write([]byte(`{}`))
			}))
			defer srv.Close()

			_, err := c.request(ctx, NewRoute(http.MethodGet, "/manga"), requestOptions{})
			So(err, ShouldBeNil)
			So(agent, ShouldContainSubstring, "mangasan")
		})

		Convey("Never attaches an Authorization header when unauthenticated", func() {
			var auth string
			c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				auth = r.Header.Get("Authorization")
				w.Write([]byte(`{}`))
			}))
			defer srv.Close()

			_, err := c.request(ctx, NewRoute(http.MethodGet, "/manga"), requestOptions{})
			So(err, ShouldBeNil)
			So(auth, ShouldBeEmpty)
		})

		Convey("Escapes path parameters", func() {
			var path string
			c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.EscapedPath()
				w.Write([]byte(`{}`))
			}))
			defer srv.Close()

			_, err := c.request(ctx, NewRoute(http.MethodGet, "/manga/%s", "id with spaces"), requestOptions{})
			So(err, ShouldBeNil)
			So(path, ShouldEqual, "/manga/id%20with%20spaces")
		})

		Convey("Maps statuses to the error taxonomy", func() {
			cases := []struct {
				status int
				check  func(error) bool
			}{
				{http.StatusBadRequest, func(err error) bool {
					var e *BadRequestError
					return errors.As(err, &e)
				}},
				{http.StatusUnauthorized, func(err error) bool {
					var e *UnauthorizedError
					return errors.As(err, &e)
				}},
				{http.StatusForbidden, func(err error) bool {
					var e *ForbiddenError
					return errors.As(err, &e)
				}},
				{http.StatusNotFound, func(err error) bool {
					var e *NotFoundError
					return errors.As(err, &e)
				}},
				{http.StatusServiceUnavailable, func(err error) bool {
					var e *APIError
					return errors.As(err, &e) && e.Status == http.StatusServiceUnavailable
				}},
			}

			for _, tc := range cases {
				status := tc.status
				c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(status)
					w.Write([]byte(`{"result":"error"}`))
				}))

				_, err := c.request(ctx, NewRoute(http.MethodGet, "/manga"), requestOptions{})
				So(err, ShouldNotBeNil)
				So(tc.check(err), ShouldBeTrue)
				srv.Close()
			}
		})

		Convey("Ping accepts a pong body", func() {
			c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("pong"))
			}))
			defer srv.Close()

			So(c.Ping(ctx), ShouldBeNil)
		})

		Convey("Ping rejects anything else", func() {
			c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("nope"))
			}))
			defer srv.Close()

			So(c.Ping(ctx), ShouldNotBeNil)
		})
	})
}

func TestClampLimits(t *testing.T) {
	Convey("Pagination clamping", t, func() {
		Convey("Caps the limit at the endpoint maximum", func() {
			limit, offset := clampLimits(1000, 0, MaxLimit)
			So(limit, ShouldEqual, 500)
			So(offset, ShouldEqual, 0)
		})

		Convey("Floors negative values", func() {
			limit, offset := clampLimits(-5, -10, MaxLimit)
			So(limit, ShouldEqual, 1)
			So(offset, ShouldEqual, 0)
		})

		Convey("Caps the offset so the window stays within the pagination depth", func() {
			limit, offset := clampLimits(100, 50_000, MaxLimit)
			So(offset, ShouldEqual, MaxDepth-limit)
		})

		Convey("Leaves in-range values alone", func() {
			limit, offset := clampLimits(100, 200, MaxLimit)
			So(limit, ShouldEqual, 100)
			So(offset, ShouldEqual, 200)
		})
	})
}
