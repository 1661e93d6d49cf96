// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/gage/internal/adapters/dataset"
)

// DatavizDependencies defines the interface for chart series queries.
type DatavizDependencies interface {
	SeriesSample(ctx context.Context, f dataset.Filter, limit int) (dataset.Series, error)
}

// DatavizHandler handles chart series requests.
type DatavizHandler struct {
	deps DatavizDependencies
}

// NewDatavizHandler creates a new dataviz handler.
func NewDatavizHandler(deps DatavizDependencies) *DatavizHandler {
	return &DatavizHandler{deps: deps}
}

// HandleGetDataviz handles GET /api/dataviz requests. It shares the
// filter parameters of /api/summary plus an optional limit on the number
// of sampled points.
func (h *DatavizHandler) HandleGetDataviz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
	}

	series, err := h.deps.SeriesSample(r.Context(), f, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}
