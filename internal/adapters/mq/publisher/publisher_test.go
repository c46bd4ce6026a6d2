package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/okian/skinsight/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher(t *testing.T) {
	Convey("Given a kafka publisher over a fake writer", t, func() {
		w := &fakeWriter{}
		p := &Kafka{writer: w, topic: "images"}
		at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		e := model.Event{
			ID:         "evt-1",
			Type:       model.EventImageAnalyzed,
			ImageID:    "abcd1234",
			SkinType:   model.SkinDry,
			Issues:     []string{model.IssueAcne},
			Confidence: 0.81,
			OccurredAt: at,
		}

		Convey("When an event is published", func() {
			So(p.Publish(context.Background(), e), ShouldBeNil)

			Convey("Then one JSON message keyed by image id should be written", func() {
				So(w.msgs, ShouldHaveLength, 1)
				msg := w.msgs[0]
				So(string(msg.Key), ShouldEqual, "abcd1234")
				So(msg.Time, ShouldEqual, at)
				So(msg.Headers, ShouldHaveLength, 1)
				So(string(msg.Headers[0].Value), ShouldEqual, model.EventImageAnalyzed)

				var decoded model.Event
				So(json.Unmarshal(msg.Value, &decoded), ShouldBeNil)
				So(decoded.SkinType, ShouldEqual, model.SkinDry)
				So(decoded.Issues, ShouldResemble, []string{model.IssueAcne})
				So(decoded.Confidence, ShouldEqual, 0.81)
			})
		})

		Convey("When the writer fails", func() {
			w.err = errors.New("broker down")
			err := p.Publish(context.Background(), e)

			Convey("Then the error should be wrapped", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "broker down")
			})
		})

		Convey("Then Close should close the writer", func() {
			So(p.Close(), ShouldBeNil)
			So(w.closed, ShouldBeTrue)
			So(p.Name(), ShouldEqual, "kafka")
			So(p.Topic(), ShouldEqual, "images")
		})
	})

	Convey("Given incomplete kafka settings", t, func() {
		_, err := NewKafka(nil, "images")
		So(errors.Is(err, ErrNoBrokers), ShouldBeTrue)

		_, err = NewKafka([]string{"localhost:9092"}, "")
		So(errors.Is(err, ErrNoTopic), ShouldBeTrue)

		p, err := NewKafka([]string{"localhost:9092"}, "images")
		So(err, ShouldBeNil)
		So(p.Close(), ShouldBeNil)
	})
}

func TestLogPublisher(t *testing.T) {
	Convey("Given a log publisher", t, func() {
		p := NewLog(nil)

		Convey("Then publishing any event type should succeed", func() {
			ctx := context.Background()
			So(p.Publish(ctx, model.Event{Type: model.EventImageUploaded, ImageID: "a", Size: 10}), ShouldBeNil)
			So(p.Publish(ctx, model.Event{Type: model.EventImageAnalyzed, ImageID: "a"}), ShouldBeNil)
			So(p.Name(), ShouldEqual, "log")
			So(p.Close(), ShouldBeNil)
		})
	})
}
