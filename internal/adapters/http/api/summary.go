// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/gage/internal/adapters/dataset"
)

// SummaryDependencies defines the interface for dataset summaries.
type SummaryDependencies interface {
	Summary(ctx context.Context, f dataset.Filter) (dataset.SummaryResult, error)
}

// SummaryHandler handles dataset summary requests.
type SummaryHandler struct {
	deps SummaryDependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// HandleGetSummary handles GET /api/summary requests. All filter query
// parameters are optional and ANDed together.
func (h *SummaryHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	res, err := h.deps.Summary(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
