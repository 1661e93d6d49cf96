// Package scoring computes the default-risk score for one client record.
//
// The score is a fixed, explainable heuristic, not a trained model: the
// credit/income ratio bounded to [0, 1]. Given the same record and the
// same snapshot the result is bit-identical on every call.
package scoring

import (
	"github.com/okian/gage/internal/domain/model"
	"github.com/okian/gage/internal/domain/stats"
)

// decisionThreshold splits predicted outcomes: scores at or above it are
// classified as a default.
const decisionThreshold = 0.5

// Score computes the risk score, tier, decision and explanation for rec.
// Percentile positioning comes from ranker, which must be backed by the
// same snapshot the record was read from.
//
// A zero or missing income saturates the ratio at 1.0: it is the riskiest
// observable case, not an error.
func Score(rec model.Record, ranker stats.Ranker) model.ScoreResult {
	ratio := 1.0
	if rec.Income > 0 {
		ratio = stats.Clamp(rec.CreditAmount/rec.Income, 0, 1)
	}

	score := ratio
	tier := stats.TierOf(score)

	decision := model.DecisionNormalRepayment
	if score >= decisionThreshold {
		decision = model.DecisionDefault
	}

	return model.ScoreResult{
		ClientID: rec.ID,
		Score:    score,
		Tier:     tier,
		Decision: decision,
		Explanation: model.Explanation{
			Ratio:            ratio,
			IncomePercentile: ranker.PercentileRank(stats.ColumnIncome, rec.Income),
			CreditPercentile: ranker.PercentileRank(stats.ColumnCredit, rec.CreditAmount),
			Tier:             tier,
		},
	}
}

// RawRatio returns the credit/income ratio before clamping, saturated at
// 1.0 when income is zero. Presentation layers use it to flag records
// whose ratio exceeds the score's [0, 1] range.
func RawRatio(rec model.Record) float64 {
	if rec.Income <= 0 {
		return 1.0
	}
	return rec.CreditAmount / rec.Income
}
