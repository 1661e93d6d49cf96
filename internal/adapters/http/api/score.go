// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/gage/internal/domain/model"
	"github.com/okian/gage/internal/domain/scoring"
)

// Influence factor thresholds, display-only.
const (
	lowRatioFactor   = 0.4
	highRatioFactor  = 1.0
	highIncomeFactor = 250_000.0
)

// ScoreDependencies defines the interface for score computations.
type ScoreDependencies interface {
	GetRecord(ctx context.Context, id int64) (model.Record, error)
	ComputeScore(ctx context.Context, id int64) (model.ScoreResult, error)
	ArchiveAnalysis(ctx context.Context, res model.ScoreResult) bool
}

// ScoreHandler handles risk score requests.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// influenceFactors lists plain-language drivers behind a score, split by
// direction. Pure presentation on top of the core's outputs.
type influenceFactors struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
}

type scoreResponse struct {
	model.ScoreResult
	Factors influenceFactors `json:"factors"`
}

// HandleGetScore handles GET /api/score/{id} requests.
func (h *ScoreHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, err := clientIDFromPath(r.URL.Path, "/api/score/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	res, err := h.deps.ComputeScore(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rec, err := h.deps.GetRecord(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Archiving is fire-and-forget: a full queue or disabled archive never
	// fails the request.
	_ = h.deps.ArchiveAnalysis(r.Context(), res)

	writeJSON(w, http.StatusOK, scoreResponse{
		ScoreResult: res,
		Factors:     buildInfluenceFactors(rec),
	})
}

// buildInfluenceFactors derives display-only drivers from the record.
func buildInfluenceFactors(rec model.Record) influenceFactors {
	var f influenceFactors
	ratio := scoring.RawRatio(rec)

	if rec.Income <= 0 {
		f.Negative = append(f.Negative, "no declared income")
	} else {
		switch {
		case ratio < lowRatioFactor:
			f.Positive = append(f.Positive, "credit is a small share of income")
		case ratio > highRatioFactor:
			f.Negative = append(f.Negative, "credit exceeds annual income")
		}
		if rec.Income > highIncomeFactor {
			f.Positive = append(f.Positive, "income well above the population average")
		}
	}
	if rec.HousingType != "" {
		f.Positive = append(f.Positive, fmt.Sprintf("known housing situation: %s", rec.HousingType))
	}
	return f
}
