// Package stats holds the distributional helpers shared by scoring and
// the dataset snapshot: tier classification and percentile column names.
package stats

import (
	"github.com/okian/gage/internal/domain/model"
)

// Tier thresholds. These are build constants, not configuration, so that
// every caller of a given build classifies identically.
const (
	moderateThreshold = 0.4
	highThreshold     = 0.7
)

// Column identifies a numeric column percentile ranks are computed over.
type Column string

// Columns available for percentile queries.
const (
	ColumnIncome Column = "income"
	ColumnCredit Column = "credit_amount"
)

// Ranker answers percentile queries against one dataset snapshot.
// The fraction returned is inclusive: records with a value equal to the
// query value count as "at or below" it.
type Ranker interface {
	PercentileRank(col Column, value float64) float64
}

// TierOf maps a bounded score onto its risk tier.
func TierOf(score float64) model.Tier {
	switch {
	case score >= highThreshold:
		return model.TierHigh
	case score >= moderateThreshold:
		return model.TierModerate
	default:
		return model.TierLow
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
