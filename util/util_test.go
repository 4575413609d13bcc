package util

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		Convey("Should replace invalid chars", func() {
			So(SanitizeFilename("chapter: 1?.png"), ShouldEqual, "chapter_1_.png")
		})
		Convey("Should collapse underscores", func() {
			So(SanitizeFilename("vol__1.png"), ShouldEqual, "vol_1.png")
		})
		Convey("Should trim separators", func() {
			So(SanitizeFilename("-oneshot-"), ShouldEqual, "oneshot")
		})
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "page", "pages"), ShouldEqual, "1 page")
		So(Quantify(4, "page", "pages"), ShouldEqual, "4 pages")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("oneshot"), ShouldEqual, "Oneshot")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(1000, 1, 500), ShouldEqual, 500)
		So(Clamp(-5, 0, 500), ShouldEqual, 0)
		So(Clamp(42, 1, 500), ShouldEqual, 42)
	})
}

func TestMax(t *testing.T) {
	Convey("Max", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Max[int](), ShouldEqual, 0)
	})
}
