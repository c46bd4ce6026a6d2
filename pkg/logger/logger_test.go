package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func decodeLines(buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		if err := json.Unmarshal([]byte(line), &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

func TestLoggerInit(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		So(Init(), ShouldBeNil)
		defer func() { _ = Sync() }()

		Convey("Then a global logger should be available", func() {
			So(Get(), ShouldNotBeNil)
			So(Named("test"), ShouldNotBeNil)
		})
	})

	Convey("Given an unknown format", t, func() {
		err := Init(WithFormat("xml"))

		Convey("Then Init should fail", func() {
			So(errors.Is(err, ErrUnknownFormat), ShouldBeTrue)
		})
	})

	Convey("Given an unknown level", t, func() {
		err := Init(WithLevel("chatty"))

		Convey("Then Init should fail", func() {
			So(errors.Is(err, ErrUnknownLevel), ShouldBeTrue)
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat(FormatJSON), WithWriter(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When an info record with fields is written", func() {
			Get().Info(ctx, "image stored", String("image_id", "abcd1234"), Int("size", 10))

			Convey("Then the fields and caller should be present", func() {
				lines := decodeLines(&buf)
				So(lines, ShouldHaveLength, 1)
				So(lines[0]["msg"], ShouldEqual, "image stored")
				So(lines[0]["level"], ShouldEqual, "INFO")
				So(lines[0]["image_id"], ShouldEqual, "abcd1234")
				So(lines[0]["size"], ShouldEqual, 10.0)
				So(lines[0]["source"], ShouldContainSubstring, "logger_test.go:")
			})
		})

		Convey("When a named logger writes", func() {
			Named("store").Warn(ctx, "slow write", Float64("ms", 12.5))

			Convey("Then fields should be grouped under the name", func() {
				lines := decodeLines(&buf)
				So(lines, ShouldHaveLength, 1)
				group, ok := lines[0]["store"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(group["ms"], ShouldEqual, 12.5)
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()

			Get().Info(ctx, "dropped")
			Get().Debug(ctx, "dropped")
			Get().Error(ctx, "kept", Error(errors.New("boom")))

			Convey("Then only errors should be written", func() {
				lines := decodeLines(&buf)
				So(lines, ShouldHaveLength, 1)
				So(lines[0]["msg"], ShouldEqual, "kept")
				So(lines[0]["error"], ShouldEqual, "boom")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("SetLevelString should accept the known levels case-insensitively", t, func() {
		for _, lvl := range []string{"debug", "INFO", "warn", "Warning", "error", ""} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("loud"), ShouldNotBeNil)
		So(SetLevelString("info"), ShouldBeNil)
	})
}
