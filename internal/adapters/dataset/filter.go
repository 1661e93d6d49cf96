package dataset

import (
	"math/rand"
	"sort"

	"github.com/okian/gage/internal/domain/model"
)

// seriesSampleSeed fixes the sampling permutation so the same snapshot
// and filter always produce the same chart series.
const seriesSampleSeed = 42

// Filter restricts aggregate queries to matching records. All provided
// predicates are ANDed; zero values mean no constraint.
type Filter struct {
	FamilyStatus string
	IncomeType   string
	Education    string
	HousingType  string

	MinIncome *float64
	MaxIncome *float64
	MinCredit *float64
	MaxCredit *float64
}

// Matches reports whether rec satisfies every provided predicate.
func (f Filter) Matches(rec model.Record) bool {
	switch {
	case f.FamilyStatus != "" && rec.FamilyStatus != f.FamilyStatus:
		return false
	case f.IncomeType != "" && rec.IncomeType != f.IncomeType:
		return false
	case f.Education != "" && rec.Education != f.Education:
		return false
	case f.HousingType != "" && rec.HousingType != f.HousingType:
		return false
	case f.MinIncome != nil && rec.Income < *f.MinIncome:
		return false
	case f.MaxIncome != nil && rec.Income > *f.MaxIncome:
		return false
	case f.MinCredit != nil && rec.CreditAmount < *f.MinCredit:
		return false
	case f.MaxCredit != nil && rec.CreditAmount > *f.MaxCredit:
		return false
	}
	return true
}

// SummaryResult aggregates the records matching a filter.
type SummaryResult struct {
	Count      int     `json:"count"`
	MeanIncome float64 `json:"mean_income"`
	MeanCredit float64 `json:"mean_credit"`
	MeanRatio  float64 `json:"mean_ratio"`
}

// Series is a chart-ready income-vs-credit scatter sample. Targets holds
// the observed default label per point, -1 where the source had none.
type Series struct {
	Incomes []float64 `json:"incomes"`
	Credits []float64 `json:"credits"`
	Targets []int     `json:"targets"`
}

// Summary computes count and means over the records matching f. Records
// with zero income are excluded from the mean ratio, mirroring how the
// ratio is undefined rather than infinite for them.
func (s *Snapshot) Summary(f Filter) SummaryResult {
	var res SummaryResult
	var ratioSum float64
	var ratioCount int
	for _, id := range s.ids {
		rec := s.records[id]
		if !f.Matches(rec) {
			continue
		}
		res.Count++
		res.MeanIncome += rec.Income
		res.MeanCredit += rec.CreditAmount
		if rec.Income > 0 {
			ratioSum += rec.CreditAmount / rec.Income
			ratioCount++
		}
	}
	if res.Count > 0 {
		res.MeanIncome /= float64(res.Count)
		res.MeanCredit /= float64(res.Count)
	}
	if ratioCount > 0 {
		res.MeanRatio = ratioSum / float64(ratioCount)
	}
	return res
}

// SeriesSample returns the scatter series of records matching f, sampled
// down to at most limit points. Sampling is deterministic: identical
// snapshot, filter and limit always select the same points.
func (s *Snapshot) SeriesSample(f Filter, limit int) Series {
	matched := make([]int64, 0, len(s.ids))
	for _, id := range s.ids {
		if f.Matches(s.records[id]) {
			matched = append(matched, id)
		}
	}

	if limit > 0 && len(matched) > limit {
		rng := rand.New(rand.NewSource(seriesSampleSeed))
		picked := rng.Perm(len(matched))[:limit]
		sort.Ints(picked)
		sampled := make([]int64, limit)
		for i, idx := range picked {
			sampled[i] = matched[idx]
		}
		matched = sampled
	}

	series := Series{
		Incomes: make([]float64, len(matched)),
		Credits: make([]float64, len(matched)),
		Targets: make([]int, len(matched)),
	}
	for i, id := range matched {
		rec := s.records[id]
		series.Incomes[i] = rec.Income
		series.Credits[i] = rec.CreditAmount
		series.Targets[i] = rec.Target
	}
	return series
}
