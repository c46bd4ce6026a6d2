package analysis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/skinsight/internal/domain/analysis"
	"github.com/okian/skinsight/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// scripted replays fixed draws and then repeats the last one.
type scripted struct {
	ints   []int
	floats []float64
}

func (s *scripted) Intn(n int) int {
	v := s.ints[0]
	if len(s.ints) > 1 {
		s.ints = s.ints[1:]
	}
	return v % n
}

func (s *scripted) Float64() float64 {
	v := s.floats[0]
	if len(s.floats) > 1 {
		s.floats = s.floats[1:]
	}
	return v
}

func TestMockAnalyzer_Deterministic(t *testing.T) {
	Convey("Given an analyzer with a scripted source", t, func() {
		src := &scripted{ints: []int{2, 1, 3, 0}, floats: []float64{0.5}}
		a := analysis.NewMockAnalyzer(analysis.WithSource(src))

		Convey("When an image is analyzed", func() {
			res, err := a.Analyze(context.Background(), model.ImageRecord{ID: "abcd1234"})

			Convey("Then the draws should map to a fixed result", func() {
				So(err, ShouldBeNil)
				So(res.ImageID, ShouldEqual, "abcd1234")
				So(res.SkinType, ShouldEqual, model.SkinCombination)
				So(res.Issues, ShouldResemble, []string{model.IssueDarkSpots, model.IssueAcne})
				So(res.Confidence, ShouldEqual, 0.85)
			})
		})
	})

	Convey("Given a source that always draws the extremes", t, func() {
		Convey("When every draw is zero", func() {
			a := analysis.NewMockAnalyzer(analysis.WithSource(&scripted{ints: []int{0}, floats: []float64{0}}))
			res, err := a.Analyze(context.Background(), model.ImageRecord{ID: "x"})

			Convey("Then the lowest options should be chosen", func() {
				So(err, ShouldBeNil)
				So(res.SkinType, ShouldEqual, model.SkinOily)
				So(res.Issues, ShouldResemble, []string{model.IssueHyperpigmentation})
				So(res.Confidence, ShouldEqual, 0.75)
			})
		})

		Convey("When the float draw approaches one", func() {
			a := analysis.NewMockAnalyzer(analysis.WithSource(&scripted{ints: []int{0}, floats: []float64{0.9999999}}))
			res, _ := a.Analyze(context.Background(), model.ImageRecord{ID: "x"})

			Convey("Then confidence should round to the upper bound", func() {
				So(res.Confidence, ShouldEqual, 0.95)
			})
		})
	})
}

func TestMockAnalyzer_Invariants(t *testing.T) {
	Convey("Given a time-seeded analyzer", t, func() {
		a := analysis.NewMockAnalyzer()
		skinTypes := model.SkinTypes()
		allIssues := model.Issues()

		Convey("Then many results should all satisfy the result invariants", func() {
			for i := 0; i < 500; i++ {
				res, err := a.Analyze(context.Background(), model.ImageRecord{ID: "img"})
				So(err, ShouldBeNil)
				So(skinTypes, ShouldContain, res.SkinType)
				So(len(res.Issues), ShouldBeBetweenOrEqual, 1, 3)

				seen := map[string]bool{}
				for _, issue := range res.Issues {
					So(allIssues, ShouldContain, issue)
					So(seen[issue], ShouldBeFalse)
					seen[issue] = true
				}

				So(res.Confidence, ShouldBeBetweenOrEqual, 0.75, 0.95)
				So(res.Confidence*100, ShouldAlmostEqual, float64(int(res.Confidence*100+0.5)), 1e-9)
			}
		})
	})

	Convey("Given a custom confidence range", t, func() {
		a := analysis.NewMockAnalyzer(analysis.WithConfidenceRange(0.5, 0.6))

		Convey("Then results should stay inside it", func() {
			for i := 0; i < 100; i++ {
				res, err := a.Analyze(context.Background(), model.ImageRecord{ID: "img"})
				So(err, ShouldBeNil)
				So(res.Confidence, ShouldBeBetweenOrEqual, 0.5, 0.6)
			}
		})

		Convey("And an inverted range should be ignored", func() {
			b := analysis.NewMockAnalyzer(
				analysis.WithSource(&scripted{ints: []int{0}, floats: []float64{0}}),
				analysis.WithConfidenceRange(0.9, 0.1),
			)
			res, _ := b.Analyze(context.Background(), model.ImageRecord{ID: "img"})
			So(res.Confidence, ShouldEqual, 0.75)
		})
	})
}

func TestMockAnalyzer_Latency(t *testing.T) {
	Convey("Given an analyzer with simulated latency", t, func() {
		a := analysis.NewMockAnalyzer(analysis.WithLatencyRange(200*time.Millisecond, 300*time.Millisecond))

		Convey("When the context is cancelled during the wait", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()
			_, err := a.Analyze(ctx, model.ImageRecord{ID: "img"})

			Convey("Then the cancellation should be returned", func() {
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})
	})

	Convey("Given an already cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := analysis.NewMockAnalyzer().Analyze(ctx, model.ImageRecord{ID: "img"})

		Convey("Then analysis should fail without drawing", func() {
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
