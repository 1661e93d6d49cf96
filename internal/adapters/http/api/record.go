// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/gage/internal/domain/model"
)

// RecordDependencies defines the interface for record lookups.
type RecordDependencies interface {
	GetRecord(ctx context.Context, id int64) (model.Record, error)
}

// RecordHandler handles client record requests.
type RecordHandler struct {
	deps RecordDependencies
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(deps RecordDependencies) *RecordHandler {
	return &RecordHandler{deps: deps}
}

// recordResponse is the client snapshot payload: the stored record plus
// the derived age in years.
type recordResponse struct {
	model.Record
	AgeYears int `json:"age_years"`
}

// HandleGetRecord handles GET /api/record/{id} requests.
func (h *RecordHandler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, err := clientIDFromPath(r.URL.Path, "/api/record/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	rec, err := h.deps.GetRecord(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{Record: rec, AgeYears: rec.AgeYears()})
}
