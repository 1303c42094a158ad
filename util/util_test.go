package util

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "line", "lines"), ShouldEqual, "1 line")
		So(Quantify(0, "line", "lines"), ShouldEqual, "0 lines")
		So(Quantify(2, "line", "lines"), ShouldEqual, "2 lines")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("logs directory"), ShouldEqual, "Logs directory")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestAbbreviate(t *testing.T) {
	Convey("Abbreviate", t, func() {
		So(Abbreviate("abcdefghij", 8), ShouldEqual, "abcde...")
		So(Abbreviate("abc", 8), ShouldEqual, "abc")
		So(Abbreviate("abcdef", 2), ShouldEqual, "abcdef")
	})
}

func TestIgnore(t *testing.T) {
	Convey("Ignore runs the function and drops its error", t, func() {
		called := false
		Ignore(func() error {
			called = true
			return errors.New("boom")
		})
		So(called, ShouldBeTrue)
	})
}
