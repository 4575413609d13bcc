package query

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBuilder(t *testing.T) {
	Convey("Builder", t, func() {
		Convey("Scalars render as key=value", func() {
			q := New().Set("limit", 100).Set("title", "solo leveling").Set("hasChapters", true)
			So(q.Encode(), ShouldEqual, "limit=100&title=solo leveling&hasChapters=true")
		})

		Convey("Lists render as repeated key[]= pairs in input order", func() {
			q := New().Set("a", []int{1, 2, 3})
			So(q.Encode(), ShouldEqual, "a[]=1&a[]=2&a[]=3")
		})

		Convey("String lists keep caller order", func() {
			q := New().Set("translatedLanguage", []string{"en", "jp", "de"})
			So(q.Encode(), ShouldEqual, "translatedLanguage[]=en&translatedLanguage[]=jp&translatedLanguage[]=de")
		})

		Convey("Nested mappings render one level of brackets", func() {
			q := New().Set("order", map[string]string{"publishAt": "desc"})
			So(q.Encode(), ShouldEqual, "order[publishAt]=desc")
		})

		Convey("Nil renders as the literal null", func() {
			q := New().Set("volume", nil)
			So(q.Encode(), ShouldEqual, "volume=null")
		})

		Convey("Mixed parameters keep insertion order across keys", func() {
			q := New().
				Set("order", map[string]string{"publishAt": "desc"}).
				Set("translatedLanguage", []string{"en", "jp"})
			So(q.Encode(), ShouldEqual, "order[publishAt]=desc&translatedLanguage[]=en&translatedLanguage[]=jp")
		})

		Convey("Resetting a key keeps its position", func() {
			q := New().Set("limit", 10).Set("offset", 0).Set("limit", 20)
			So(q.Encode(), ShouldEqual, "limit=20&offset=0")
		})
	})
}

func TestFromStruct(t *testing.T) {
	type order struct {
		CreatedAt string `url:"createdAt,omitempty"`
	}
	type opts struct {
		Limit    int      `url:"limit"`
		Includes []string `url:"includes,omitempty,brackets"`
		Order    order    `url:"order"`
	}

	Convey("FromStruct", t, func() {
		Convey("Slices use brackets and nested structs bracket their parent", func() {
			encoded, err := FromStruct(opts{
				Limit:    10,
				Includes: []string{"author", "artist"},
				Order:    order{CreatedAt: "desc"},
			})
			So(err, ShouldBeNil)
			So(encoded, ShouldEqual, "includes[]=author&includes[]=artist&limit=10&order[createdAt]=desc")
		})

		Convey("Empty optional fields are omitted", func() {
			encoded, err := FromStruct(opts{Limit: 1})
			So(err, ShouldBeNil)
			So(encoded, ShouldEqual, "limit=1")
		})
	})
}

func TestTristate(t *testing.T) {
	Convey("Tristate", t, func() {
		body := make(map[string]any)

		Convey("Unchanged fields stay out of the body", func() {
			Unchanged[string]().Apply(body, "description")
			So(body, ShouldNotContainKey, "description")
		})

		Convey("Null fields are sent as explicit nulls", func() {
			Null[string]().Apply(body, "lastVolume")
			So(body, ShouldContainKey, "lastVolume")
			So(body["lastVolume"], ShouldBeNil)
		})

		Convey("Set fields carry their value", func() {
			Set("42").Apply(body, "lastChapter")
			So(body["lastChapter"], ShouldEqual, "42")
		})
	})
}
