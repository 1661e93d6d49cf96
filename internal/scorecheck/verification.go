package scorecheck

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/gage/internal/adapters/dataset"
	"github.com/okian/gage/internal/domain/scoring"
)

// scoreTolerance absorbs the float round-trip through CSV and JSON.
const scoreTolerance = 1e-9

// Mismatch describes one probe whose served score disagreed with the
// local recomputation.
type Mismatch struct {
	ClientID int64
	Want     float64
	Got      float64
	WantTier string
	GotTier  string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("client %d: want score=%.9f tier=%s, got score=%.9f tier=%s",
		m.ClientID, m.Want, m.WantTier, m.Got, m.GotTier)
}

// Verifier recomputes expected scores from the generated dataset using
// the same loader and scoring function the server runs.
type Verifier struct {
	snap *dataset.Snapshot
}

// NewVerifier loads the generated CSV into a local snapshot.
func NewVerifier(ctx context.Context, datasetPath string) (*Verifier, error) {
	snap, _, err := dataset.Load(ctx, datasetPath)
	if err != nil {
		return nil, fmt.Errorf("load local snapshot: %w", err)
	}
	return &Verifier{snap: snap}, nil
}

// Check compares one served payload against the local recomputation.
// A nil return means they agree.
func (v *Verifier) Check(ctx context.Context, served ScorePayload) (*Mismatch, error) {
	rec, err := v.snap.Lookup(ctx, served.ClientID)
	if err != nil {
		return nil, fmt.Errorf("local lookup %d: %w", served.ClientID, err)
	}
	want := scoring.Score(rec, v.snap)

	if math.Abs(want.Score-served.Score) <= scoreTolerance && string(want.Tier) == served.Tier {
		return nil, nil
	}
	return &Mismatch{
		ClientID: served.ClientID,
		Want:     want.Score,
		Got:      served.Score,
		WantTier: string(want.Tier),
		GotTier:  served.Tier,
	}, nil
}
