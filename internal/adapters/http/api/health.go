// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/okian/gage/internal/adapters/dataset"
)

// HealthDependencies defines the interface for liveness reporting.
type HealthDependencies interface {
	DatasetState() dataset.State
	RecordCount(ctx context.Context) int
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps HealthDependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps HealthDependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

type healthResponse struct {
	Status    string    `json:"status"`
	State     string    `json:"state"`
	Records   int       `json:"records"`
	Timestamp time.Time `json:"timestamp"`
}

// HandleHealth handles GET /healthz requests. The process is "healthy"
// whenever it can answer; the dataset state tells callers whether scoring
// is actually available.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		State:     string(h.deps.DatasetState()),
		Records:   h.deps.RecordCount(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}
