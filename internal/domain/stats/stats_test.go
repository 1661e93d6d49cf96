package stats_test

import (
	"testing"

	"github.com/okian/gage/internal/domain/model"
	"github.com/okian/gage/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTierOf(t *testing.T) {
	Convey("Given the fixed tier thresholds", t, func() {
		Convey("Then scores below 0.4 are low", func() {
			So(stats.TierOf(0), ShouldEqual, model.TierLow)
			So(stats.TierOf(0.1), ShouldEqual, model.TierLow)
			So(stats.TierOf(0.399), ShouldEqual, model.TierLow)
		})

		Convey("And scores in [0.4, 0.7) are moderate", func() {
			So(stats.TierOf(0.4), ShouldEqual, model.TierModerate)
			So(stats.TierOf(0.5), ShouldEqual, model.TierModerate)
			So(stats.TierOf(0.699), ShouldEqual, model.TierModerate)
		})

		Convey("And scores at or above 0.7 are high", func() {
			So(stats.TierOf(0.7), ShouldEqual, model.TierHigh)
			So(stats.TierOf(0.9), ShouldEqual, model.TierHigh)
			So(stats.TierOf(1.0), ShouldEqual, model.TierHigh)
		})
	})
}

func TestClamp(t *testing.T) {
	Convey("Given the clamp helper", t, func() {
		Convey("Then values inside the range pass through", func() {
			So(stats.Clamp(0.5, 0, 1), ShouldEqual, 0.5)
			So(stats.Clamp(0, 0, 1), ShouldEqual, 0)
			So(stats.Clamp(1, 0, 1), ShouldEqual, 1)
		})

		Convey("And values outside the range are bounded", func() {
			So(stats.Clamp(-0.3, 0, 1), ShouldEqual, 0)
			So(stats.Clamp(2.7, 0, 1), ShouldEqual, 1)
		})
	})
}
