package tags

import (
	"testing"

	"github.com/mangasan-dev/mangasan/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	filesystem.SetMemMapFs()
	defer filesystem.SetOsFs()

	Convey("Tag registry", t, func() {
		registry, err := Load()
		So(err, ShouldBeNil)

		Convey("The embedded snapshot decodes and is non-trivial", func() {
			So(len(registry.All()), ShouldBeGreaterThan, 30)
			for _, tag := range registry.All() {
				So(tag.ID, ShouldNotBeEmpty)
				So(tag.Name, ShouldNotBeEmpty)
				So(tag.Group, ShouldNotBeEmpty)
			}
		})

		Convey("Find matches exactly regardless of case", func() {
			tag, ok := registry.Find("rOmAnCe").Get()
			So(ok, ShouldBeTrue)
			So(tag.Name, ShouldEqual, "Romance")
			So(tag.Group, ShouldEqual, "genre")
		})

		Convey("Find falls back to fuzzy matching", func() {
			tag, ok := registry.Find("scifi").Get()
			So(ok, ShouldBeTrue)
			So(tag.Name, ShouldEqual, "Sci-Fi")
		})

		Convey("Find reports no match for nonsense", func() {
			So(registry.Find("xqzv").IsAbsent(), ShouldBeTrue)
		})

		Convey("IDs resolves a batch of names", func() {
			ids, err := registry.IDs("Action", "Romance")
			So(err, ShouldBeNil)
			So(ids, ShouldHaveLength, 2)
			So(ids[0], ShouldNotEqual, ids[1])
		})

		Convey("IDs fails on the first unknown name", func() {
			_, err := registry.IDs("Action", "xqzv")
			So(err, ShouldNotBeNil)
		})

		Convey("NewQuery uppercases the mode and resolves names", func() {
			query, err := registry.NewQuery("or", "Action", "Comedy")
			So(err, ShouldBeNil)
			So(query.Mode, ShouldEqual, "OR")
			So(query.IDs, ShouldHaveLength, 2)
		})

		Convey("NewQuery rejects an unknown mode", func() {
			_, err := registry.NewQuery("XOR", "Action")
			So(err, ShouldNotBeNil)
		})
	})
}
