package version

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Compare", t, func() {
		Convey("Should detect a newer version", func() {
			comp, err := Compare("1.2.3", "1.2.2")
			So(err, ShouldBeNil)
			So(comp, ShouldEqual, 1)
		})

		Convey("Should detect an older version", func() {
			comp, err := Compare("0.9.9", "1.0.0")
			So(err, ShouldBeNil)
			So(comp, ShouldEqual, -1)
		})

		Convey("Should treat equal versions as equal", func() {
			comp, err := Compare("2.0.0", "2.0.0")
			So(err, ShouldBeNil)
			So(comp, ShouldEqual, 0)
		})

		Convey("Should tolerate a leading v", func() {
			comp, err := Compare("v1.1.0", "1.0.5")
			So(err, ShouldBeNil)
			So(comp, ShouldEqual, 1)
		})

		Convey("Should reject malformed versions", func() {
			_, err := Compare("not-a-version", "1.0.0")
			So(err, ShouldNotBeNil)
		})
	})
}
