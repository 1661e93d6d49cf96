// Package model contains domain models passed between layers.
package model

// daysPerYear converts the dataset's age-in-days convention to years.
const daysPerYear = 365

// Record is one client's row from the application dataset. Records are
// owned by the dataset snapshot and never mutated after load.
type Record struct {
	ID           int64   `json:"id"`
	Income       float64 `json:"income"`
	CreditAmount float64 `json:"credit_amount"`

	// DaysBirth is the client's age in days at application time, negative
	// in the source data (days before the application date).
	DaysBirth int `json:"days_birth,omitempty"`

	// Categorical fields used for filtering and display only.
	FamilyStatus string `json:"family_status,omitempty"`
	Education    string `json:"education,omitempty"`
	HousingType  string `json:"housing_type,omitempty"`
	IncomeType   string `json:"income_type,omitempty"`

	// Target is the observed default label when the source carries one:
	// 0 = repaid, 1 = defaulted, -1 = unknown.
	Target int `json:"target,omitempty"`
}

// AgeYears derives the client's age in whole years from DaysBirth.
func (r Record) AgeYears() int {
	days := r.DaysBirth
	if days < 0 {
		days = -days
	}
	return days / daysPerYear
}

// Tier is the coarse risk classification derived from a score.
type Tier string

// Risk tiers in increasing order of risk.
const (
	TierLow      Tier = "low"
	TierModerate Tier = "moderate"
	TierHigh     Tier = "high"
)

// Decision is the predicted repayment outcome.
type Decision string

// Possible decisions.
const (
	DecisionDefault         Decision = "default"
	DecisionNormalRepayment Decision = "normal_repayment"
)

// Explanation carries the inputs behind a score so callers can present
// the client's position relative to the population.
type Explanation struct {
	Ratio            float64 `json:"ratio"`
	IncomePercentile float64 `json:"income_percentile"`
	CreditPercentile float64 `json:"credit_percentile"`
	Tier             Tier    `json:"tier"`
}

// ScoreResult is the full outcome of scoring one record. It is derived,
// never stored, and cheap to recompute against the current snapshot.
type ScoreResult struct {
	ClientID    int64       `json:"client_id"`
	Score       float64     `json:"score"`
	Tier        Tier        `json:"tier"`
	Decision    Decision    `json:"decision"`
	Explanation Explanation `json:"explanation"`
}
