package scoring_test

import (
	"testing"

	"github.com/okian/gage/internal/domain/model"
	"github.com/okian/gage/internal/domain/scoring"
	"github.com/okian/gage/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

// stubRanker returns fixed percentiles so scoring tests stay independent
// of any snapshot.
type stubRanker struct {
	income float64
	credit float64
}

func (s stubRanker) PercentileRank(col stats.Column, _ float64) float64 {
	if col == stats.ColumnIncome {
		return s.income
	}
	return s.credit
}

func TestScore(t *testing.T) {
	ranker := stubRanker{income: 0.62, credit: 0.31}

	Convey("Given a client with income 200000 and credit 100000", t, func() {
		rec := model.Record{ID: 100002, Income: 200_000, CreditAmount: 100_000}

		Convey("When the record is scored", func() {
			got := scoring.Score(rec, ranker)

			Convey("Then the score is the credit/income ratio", func() {
				So(got.Score, ShouldEqual, 0.5)
				So(got.Tier, ShouldEqual, model.TierModerate)
				So(got.Decision, ShouldEqual, model.DecisionDefault)
			})

			Convey("And the explanation carries the ratio and percentiles", func() {
				So(got.ClientID, ShouldEqual, int64(100002))
				So(got.Explanation.Ratio, ShouldEqual, 0.5)
				So(got.Explanation.IncomePercentile, ShouldEqual, 0.62)
				So(got.Explanation.CreditPercentile, ShouldEqual, 0.31)
				So(got.Explanation.Tier, ShouldEqual, model.TierModerate)
			})
		})
	})

	Convey("Given a client with no declared income", t, func() {
		rec := model.Record{ID: 7, Income: 0, CreditAmount: 50_000}

		Convey("When the record is scored", func() {
			got := scoring.Score(rec, ranker)

			Convey("Then the score saturates at the riskiest value", func() {
				So(got.Score, ShouldEqual, 1.0)
				So(got.Tier, ShouldEqual, model.TierHigh)
				So(got.Decision, ShouldEqual, model.DecisionDefault)
			})
		})
	})

	Convey("Given a credit far above income", t, func() {
		rec := model.Record{ID: 8, Income: 100_000, CreditAmount: 300_000}

		Convey("Then the score is clamped to 1.0", func() {
			got := scoring.Score(rec, ranker)
			So(got.Score, ShouldEqual, 1.0)
			So(got.Tier, ShouldEqual, model.TierHigh)
		})
	})

	Convey("Given a low credit/income ratio", t, func() {
		rec := model.Record{ID: 9, Income: 300_000, CreditAmount: 60_000}

		Convey("Then the decision is normal repayment", func() {
			got := scoring.Score(rec, ranker)
			So(got.Score, ShouldEqual, 0.2)
			So(got.Tier, ShouldEqual, model.TierLow)
			So(got.Decision, ShouldEqual, model.DecisionNormalRepayment)
		})
	})

	Convey("Given the same record scored twice", t, func() {
		rec := model.Record{ID: 10, Income: 157_500, CreditAmount: 98_765.43}

		Convey("Then both results are bit-identical", func() {
			first := scoring.Score(rec, ranker)
			second := scoring.Score(rec, ranker)
			So(second, ShouldResemble, first)
		})
	})
}

func TestRawRatio(t *testing.T) {
	Convey("Given the unclamped ratio helper", t, func() {
		Convey("Then a ratio above 1 is preserved", func() {
			rec := model.Record{Income: 100_000, CreditAmount: 250_000}
			So(scoring.RawRatio(rec), ShouldEqual, 2.5)
		})

		Convey("And a zero income saturates at 1.0", func() {
			rec := model.Record{Income: 0, CreditAmount: 250_000}
			So(scoring.RawRatio(rec), ShouldEqual, 1.0)
		})
	})
}
