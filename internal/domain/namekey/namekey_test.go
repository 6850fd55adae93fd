package namekey_test

import (
	"testing"

	namekey "github.com/keunyop/rubricheck/internal/domain/namekey"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given criterion names", t, func() {
		Convey("When names differ only in case and surrounding space", func() {
			Convey("Then they should share one key", func() {
				So(namekey.Normalize("Clarity"), ShouldEqual, "clarity")
				So(namekey.Normalize("clarity "), ShouldEqual, "clarity")
				So(namekey.Normalize("  CLARITY"), ShouldEqual, "clarity")
			})
		})

		Convey("When punctuation separates words", func() {
			Convey("Then each punctuation run should become one space", func() {
				So(namekey.Normalize("Clarity of Writing!"), ShouldEqual, "clarity of writing")
				So(namekey.Normalize("code--quality__and   style"), ShouldEqual, "code quality and style")
				So(namekey.Normalize("Use of Sources (APA)"), ShouldEqual, "use of sources apa")
			})
		})

		Convey("When the name carries compatibility characters", func() {
			Convey("Then NFKC should fold them before keying", func() {
				// Fullwidth letters fold to ASCII.
				So(namekey.Normalize("Ｃｌａｒｉｔｙ"), ShouldEqual, "clarity")
				// Circled digits fold to plain digits.
				So(namekey.Normalize("Part ①"), ShouldEqual, "part 1")
			})
		})

		Convey("When the name has accented letters", func() {
			Convey("Then letters should survive keying", func() {
				So(namekey.Normalize("Présentation"), ShouldEqual, "présentation")
			})
		})

		Convey("When the name has digits", func() {
			Convey("Then digits should survive keying", func() {
				So(namekey.Normalize("Question 2b"), ShouldEqual, "question 2b")
			})
		})

		Convey("When the name is empty or all punctuation", func() {
			Convey("Then the key should be empty", func() {
				So(namekey.Normalize(""), ShouldEqual, "")
				So(namekey.Normalize("  ***  "), ShouldEqual, "")
				So(namekey.Normalize("---"), ShouldEqual, "")
			})
		})

		Convey("When normalizing twice", func() {
			once := namekey.Normalize("  Clarity, of--Writing ")
			twice := namekey.Normalize(once)

			Convey("Then the key should be stable", func() {
				So(twice, ShouldEqual, once)
			})
		})
	})
}
