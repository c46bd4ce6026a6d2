package validation_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/okian/skinsight/internal/domain/model"
	"github.com/okian/skinsight/internal/domain/validation"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	pngHeader  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0}
)

func pngBytes(n int) []byte {
	b := make([]byte, n)
	copy(b, pngHeader)
	return b
}

func kindOf(err error) model.ValidationKind {
	kind, _ := model.ValidationKindOf(err)
	return kind
}

func TestValidate(t *testing.T) {
	Convey("Given a default validator", t, func() {
		v := validation.New()

		Convey("When a small PNG with a valid signature is checked", func() {
			err := v.Validate("a.png", pngBytes(10))

			Convey("Then it should be accepted", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When JPEG content is named with an upper-case extension", func() {
			err := v.Validate("PHOTO.JPEG", jpegHeader)

			Convey("Then the extension should be matched case-insensitively", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When a .jpg file carries the bare three-byte JPEG signature", func() {
			So(v.Validate("x.jpg", []byte{0xFF, 0xD8, 0xFF}), ShouldBeNil)
		})

		Convey("When valid PNG bytes are named a.txt", func() {
			err := v.Validate("a.txt", pngBytes(10))

			Convey("Then it should be rejected as an unsupported type", func() {
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
				So(kindOf(err), ShouldEqual, model.UnsupportedType)
				So(err.Error(), ShouldContainSubstring, ".jpg, .jpeg, .png")
			})
		})

		Convey("When the filename has no extension", func() {
			err := v.Validate("noext", pngBytes(10))

			Convey("Then it should be rejected as an unsupported type", func() {
				So(kindOf(err), ShouldEqual, model.UnsupportedType)
			})
		})

		Convey("When a text payload is named a.jpg", func() {
			err := v.Validate("a.jpg", []byte("hello"))

			Convey("Then it should be rejected as a content mismatch", func() {
				So(kindOf(err), ShouldEqual, model.ContentMismatch)
				So(err.Error(), ShouldContainSubstring, "JPEG")
			})
		})

		Convey("When PNG bytes are named as JPEG", func() {
			err := v.Validate("a.jpg", pngBytes(32))

			Convey("Then the signature of the claimed type should be enforced", func() {
				So(kindOf(err), ShouldEqual, model.ContentMismatch)
			})
		})

		Convey("When the content is empty", func() {
			err := v.Validate("a.png", nil)

			Convey("Then it should be rejected as a content mismatch", func() {
				So(kindOf(err), ShouldEqual, model.ContentMismatch)
			})
		})
	})
}

func TestValidateSizeBoundary(t *testing.T) {
	Convey("Given a default validator", t, func() {
		v := validation.New()
		So(v.MaxSize(), ShouldEqual, 5*1024*1024)

		Convey("When the content is exactly 5 MiB", func() {
			err := v.Validate("big.png", pngBytes(validation.DefaultMaxSize))

			Convey("Then it should be accepted", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When the content is one byte over 5 MiB", func() {
			err := v.Validate("big.png", pngBytes(validation.DefaultMaxSize+1))

			Convey("Then it should be rejected as too large", func() {
				So(kindOf(err), ShouldEqual, model.FileTooLarge)
				So(err.Error(), ShouldEqual, "File too large. Max size: 5MB")
			})
		})

		Convey("When an oversize file also has a bad extension and bad content", func() {
			err := v.Validate("big.txt", bytes.Repeat([]byte("x"), validation.DefaultMaxSize+1))

			Convey("Then size should be reported first", func() {
				So(kindOf(err), ShouldEqual, model.FileTooLarge)
			})
		})

		Convey("When a bad extension meets bad content", func() {
			err := v.Validate("a.gif", []byte("hello"))

			Convey("Then the extension should be reported before the content", func() {
				So(kindOf(err), ShouldEqual, model.UnsupportedType)
			})
		})
	})

	Convey("Given a validator with a custom limit", t, func() {
		v := validation.New(validation.WithMaxSize(16))

		Convey("Then the limit should apply and the message should use bytes", func() {
			So(v.Validate("a.png", pngBytes(16)), ShouldBeNil)
			err := v.Validate("a.png", pngBytes(17))
			So(kindOf(err), ShouldEqual, model.FileTooLarge)
			So(err.Error(), ShouldContainSubstring, "16 bytes")
		})

		Convey("And non-positive limits should be ignored", func() {
			So(validation.New(validation.WithMaxSize(0)).MaxSize(), ShouldEqual, validation.DefaultMaxSize)
		})
	})
}

func TestValidateDoesNotMutate(t *testing.T) {
	Convey("Given some content", t, func() {
		content := pngBytes(64)
		content[40] = 0x7F
		snapshot := append([]byte(nil), content...)

		Convey("When it is validated", func() {
			_ = validation.New().Validate("a.png", content)

			Convey("Then the bytes should be unchanged", func() {
				So(content, ShouldResemble, snapshot)
			})
		})
	})
}

func TestExtension(t *testing.T) {
	Convey("Extension should lowercase and keep the dot", t, func() {
		So(validation.Extension("Face.PNG"), ShouldEqual, ".png")
		So(validation.Extension("archive.tar.JPG"), ShouldEqual, ".jpg")
		So(validation.Extension("noext"), ShouldEqual, "")
		So(validation.Extension(".png"), ShouldEqual, "")
		So(validation.Extension("dir/.JPG"), ShouldEqual, "")
		So(validation.Extension("..png"), ShouldEqual, ".png")
		So(validation.AllowedExtensions(), ShouldResemble, []string{".jpg", ".jpeg", ".png"})
	})
}

func TestValidateDotfile(t *testing.T) {
	Convey("Given a file named only .png with PNG bytes", t, func() {
		err := validation.New().Validate(".png", pngBytes(10))

		Convey("Then it should be rejected as an unsupported type", func() {
			So(kindOf(err), ShouldEqual, model.UnsupportedType)
			So(err.Error(), ShouldEqual, "Invalid file type. Allowed: .jpg, .jpeg, .png")
		})
	})
}
