// Package dataset owns the in-memory application dataset: the immutable
// snapshot built per load, the CSV loader that builds it, and the manager
// that swaps snapshots atomically under concurrent readers.
package dataset

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/okian/gage/internal/domain/model"
	"github.com/okian/gage/internal/domain/stats"
)

// Snapshot is one fully-loaded, immutable instance of the dataset. All
// records in a snapshot come from the same source read at the same
// instant; readers holding a snapshot keep a consistent view even while
// the manager swaps in a newer one.
type Snapshot struct {
	records map[int64]model.Record

	// ids preserves load order for deterministic iteration.
	ids []int64

	// Ascending column values backing percentile queries.
	sortedIncome []float64
	sortedCredit []float64

	loadedAt time.Time
}

// Count returns the number of records in the snapshot.
func (s *Snapshot) Count() int {
	return len(s.ids)
}

// LoadedAt returns the instant the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Lookup returns the record with the given id.
func (s *Snapshot) Lookup(_ context.Context, id int64) (model.Record, error) {
	rec, ok := s.records[id]
	if !ok {
		return model.Record{}, fmt.Errorf("client %d: %w", id, ErrRecordNotFound)
	}
	return rec, nil
}

// PercentileRank returns the fraction of records whose value in col is at
// or below value, in [0, 1]. Ties count toward the fraction. An empty
// column and a NaN query value both rank at 0 by convention.
func (s *Snapshot) PercentileRank(col stats.Column, value float64) float64 {
	vals := s.column(col)
	if len(vals) == 0 || math.IsNaN(value) {
		return 0.0
	}
	// First index whose value exceeds the target == count of values <= target.
	atOrBelow := sort.Search(len(vals), func(i int) bool { return vals[i] > value })
	return float64(atOrBelow) / float64(len(vals))
}

func (s *Snapshot) column(col stats.Column) []float64 {
	switch col {
	case stats.ColumnIncome:
		return s.sortedIncome
	case stats.ColumnCredit:
		return s.sortedCredit
	default:
		return nil
	}
}
